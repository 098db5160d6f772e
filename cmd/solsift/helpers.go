package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"log/slog"

	"github.com/solsift/solsift/internal/birdeye"
	"github.com/solsift/solsift/internal/config"
	"github.com/solsift/solsift/internal/engine"
	"github.com/solsift/solsift/internal/llm"
	"github.com/solsift/solsift/internal/model"
	"github.com/solsift/solsift/internal/service"
	"github.com/solsift/solsift/internal/storage"
	"github.com/spf13/viper"
)

// initStorage opens the database and runs migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/solsift/solsift.db"
	}

	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// createOracle creates an LLM client based on configuration. Shared by the
// commands that need LLM screening.
func createOracle() (*llm.Client, error) {
	provider := viper.GetString("llm.provider")
	if provider == "" {
		provider = "anthropic" // default provider
	}

	cfg := llm.Config{
		Provider:    provider,
		Model:       viper.GetString("llm.model"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RetryDelay:  viper.GetDuration("llm.retry_delay"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
	}

	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 60 // requests per minute
	}

	// Get API key based on provider
	switch provider {
	case "anthropic":
		apiKey := viper.GetString("llm.anthropic_api_key")
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("anthropic API key not found in config or ANTHROPIC_API_KEY environment variable")
		}
		cfg.APIKey = apiKey

	case "openai":
		apiKey := viper.GetString("llm.openai_api_key")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key not found in config or OPENAI_API_KEY environment variable")
		}
		cfg.APIKey = apiKey

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}

	client, err := llm.NewClient(cfg, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	return client, nil
}

// createMarketClient creates the BirdEye client from configuration.
func createMarketClient() (*birdeye.Client, error) {
	apiKey := viper.GetString("birdeye.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("BIRDEYE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("BirdEye API key not found in config or BIRDEYE_API_KEY environment variable")
	}

	return birdeye.NewClient(birdeye.Config{
		APIKey:            apiKey,
		BaseURL:           viper.GetString("birdeye.base_url"),
		RequestsPerSecond: viper.GetFloat64("birdeye.requests_per_second"),
		Timeout:           viper.GetDuration("birdeye.timeout"),
		Retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	})
}

// pipelineConfig builds the engine configuration from viper, starting from
// the defaults and overriding only what the config file sets.
func pipelineConfig() engine.Config {
	cfg := engine.DefaultConfig()

	if v := viper.GetInt("pipeline.page_size"); v > 0 {
		cfg.PageSize = v
	}
	if v := viper.GetInt("pipeline.max_offset"); v > 0 {
		cfg.MaxOffset = v
	}
	if v := viper.GetInt("pipeline.batch_size"); v > 0 {
		cfg.BatchSize = v
	}
	if v := viper.GetInt("pipeline.workers"); v > 0 {
		cfg.WorkerCount = v
	}
	if v := viper.GetFloat64("pipeline.market_threshold"); v > 0 {
		cfg.MarketThreshold = v
	}
	if v := viper.GetFloat64("pipeline.metadata_threshold"); v > 0 {
		cfg.MetadataThreshold = v
	}
	if floors := viper.GetStringMap("pipeline.floors"); len(floors) > 0 {
		merged := model.DefaultFloors()
		for key := range floors {
			merged[key] = viper.GetFloat64("pipeline.floors." + key)
		}
		cfg.Floors = merged
	}

	return cfg
}
