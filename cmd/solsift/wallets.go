package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/solsift/solsift/internal/model"
	"github.com/spf13/cobra"
)

func walletsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallets",
		Short: "Manage the tracked KOL wallet roster",
	}

	cmd.AddCommand(walletsAddCmd())
	cmd.AddCommand(walletsListCmd())
	cmd.AddCommand(walletsImportCmd())

	return cmd
}

func walletsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add or update a tracked wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			name, _ := cmd.Flags().GetString("name")
			description, _ := cmd.Flags().GetString("description")
			category, _ := cmd.Flags().GetString("category")
			twitter, _ := cmd.Flags().GetString("twitter")
			addresses, _ := cmd.Flags().GetStringSlice("address")
			influence, _ := cmd.Flags().GetFloat64("influence")
			inactive, _ := cmd.Flags().GetBool("inactive")

			wallet := &model.KOLWallet{
				LastUpdated:     time.Now().UTC(),
				ID:              args[0],
				Name:            name,
				Description:     description,
				Category:        category,
				TwitterHandle:   twitter,
				WalletAddresses: addresses,
				InfluenceScore:  influence,
				Active:          !inactive,
			}

			if err := store.SaveKOLWallet(ctx, wallet); err != nil {
				return err
			}

			cmd.Printf("Saved wallet %s (%d addresses)\n", wallet.ID, len(wallet.WalletAddresses))
			return nil
		},
	}

	cmd.Flags().String("name", "", "display name")
	cmd.Flags().String("description", "", "free-form notes")
	cmd.Flags().String("category", "", "category tag (trader, founder, fund, ...)")
	cmd.Flags().String("twitter", "", "twitter handle")
	cmd.Flags().StringSlice("address", nil, "wallet address (repeatable)")
	cmd.Flags().Float64("influence", 0.5, "influence score in [0,1]")
	cmd.Flags().Bool("inactive", false, "exclude from ownership checks")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("address")

	return cmd
}

func walletsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked wallets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			all, _ := cmd.Flags().GetBool("all")

			var wallets []model.KOLWallet
			if all {
				wallets, err = store.GetAllKOLWallets(ctx)
			} else {
				wallets, err = store.GetActiveKOLWallets(ctx)
			}
			if err != nil {
				return err
			}
			if len(wallets) == 0 {
				cmd.Println("No wallets tracked.")
				return nil
			}

			cmd.Printf("%-16s %-24s %-10s %9s %6s  %s\n", "ID", "NAME", "CATEGORY", "INFLUENCE", "ACTIVE", "ADDRESSES")
			for _, w := range wallets {
				active := "yes"
				if !w.Active {
					active = "no"
				}
				cmd.Printf("%-16s %-24s %-10s %9.2f %6s  %s\n",
					w.ID, w.Name, w.Category, w.InfluenceScore, active,
					strings.Join(w.WalletAddresses, ","))
			}
			return nil
		},
	}

	cmd.Flags().Bool("all", false, "include inactive wallets")

	return cmd
}

func walletsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import wallets from a JSON file",
		Long:  `Import a JSON array of wallet records. Existing IDs are overwritten.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			var wallets []model.KOLWallet
			if err := json.Unmarshal(data, &wallets); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}
			if len(wallets) == 0 {
				cmd.Println("Nothing to import.")
				return nil
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			bar := progressbar.NewOptions(len(wallets),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Importing wallets..."),
			)

			var imported int
			for i := range wallets {
				if wallets[i].LastUpdated.IsZero() {
					wallets[i].LastUpdated = time.Now().UTC()
				}
				if err := store.SaveKOLWallet(ctx, &wallets[i]); err != nil {
					_ = bar.Finish()
					return fmt.Errorf("failed to import wallet %q: %w", wallets[i].ID, err)
				}
				imported++
				_ = bar.Add(1)
			}
			_ = bar.Finish()

			cmd.Printf("\nImported %d wallets\n", imported)
			return nil
		},
	}
}
