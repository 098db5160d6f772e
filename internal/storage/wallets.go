package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/solsift/solsift/internal/model"
)

// SaveKOLWallet inserts or replaces a tracked wallet record.
func (s *SQLiteStorage) SaveKOLWallet(ctx context.Context, wallet *model.KOLWallet) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if wallet == nil {
		return fmt.Errorf("wallet is required")
	}
	if wallet.ID == "" {
		return fmt.Errorf("wallet ID is required")
	}
	if wallet.Name == "" {
		return fmt.Errorf("wallet name is required")
	}
	if len(wallet.WalletAddresses) == 0 {
		return fmt.Errorf("wallet %s has no addresses", wallet.ID)
	}

	doc, err := json.Marshal(wallet)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet %s: %w", wallet.ID, err)
	}

	active := 0
	if wallet.Active {
		active = 1
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO kol_wallets (id, name, active, document)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			active = excluded.active,
			document = excluded.document`,
		wallet.ID, wallet.Name, active, string(doc))
	if err != nil {
		return fmt.Errorf("failed to save wallet %s: %w", wallet.ID, err)
	}

	return nil
}

// GetActiveKOLWallets returns the wallets currently eligible for ownership
// checks.
func (s *SQLiteStorage) GetActiveKOLWallets(ctx context.Context) ([]model.KOLWallet, error) {
	return s.queryWallets(ctx, `SELECT document FROM kol_wallets WHERE active = 1 ORDER BY name`)
}

// GetAllKOLWallets returns every tracked wallet, active or not.
func (s *SQLiteStorage) GetAllKOLWallets(ctx context.Context) ([]model.KOLWallet, error) {
	return s.queryWallets(ctx, `SELECT document FROM kol_wallets ORDER BY name`)
}

func (s *SQLiteStorage) queryWallets(ctx context.Context, query string) ([]model.KOLWallet, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var wallets []model.KOLWallet
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		var wallet model.KOLWallet
		if err := json.Unmarshal([]byte(doc), &wallet); err != nil {
			return nil, fmt.Errorf("failed to decode wallet document: %w", err)
		}
		wallets = append(wallets, wallet)
	}

	return wallets, rows.Err()
}
