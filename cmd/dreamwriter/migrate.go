package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dreamwriter-api/internal/wire"
	"dreamwriter-api/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the novels, characters and chapters tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		client, cleanup, err := wire.InitializeStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		defer cleanup()

		logger.Info(ctx, "schema ready", "driver", client.Driver())
		return nil
	},
}
