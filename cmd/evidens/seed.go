package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dev-Pau/evidens/internal/localstore"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill the embedded store with demo cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configDir)
			if err != nil {
				return err
			}
			logger, closer := setupLogger(cfg)
			defer closer.Close()

			store, err := localstore.Open(cfg.Backend.DBPath, localUserID, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.SeedDemo()
			if err != nil {
				return fmt.Errorf("failed to seed: %w", err)
			}
			if n == 0 {
				fmt.Println("Store already has content, nothing seeded.")
				return nil
			}
			fmt.Printf("✓ Seeded %d items into %s\n", n, cfg.Backend.DBPath)
			return nil
		},
	}
}
