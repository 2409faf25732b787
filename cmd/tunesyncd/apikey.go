package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harmonie-studio/tunesync/internal/config"
	"github.com/harmonie-studio/tunesync/internal/sqlite"
)

func newAPIKeyCommand() *cobra.Command {
	apiKeyCmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys",
	}
	apiKeyCmd.AddCommand(newAPIKeyAddCommand())
	return apiKeyCmd
}

func newAPIKeyAddCommand() *cobra.Command {
	var userID string
	var admin, teacher bool
	var description string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an API key and print the token once",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}

			db, err := sqlite.New(cfg.DB.Path)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			if err := db.RunMigrations(); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}

			token := uuid.NewString()
			keyRepo := sqlite.NewAPIKeyRepository(db)
			if err := keyRepo.CreateKey(cmd.Context(), token, userID, admin, teacher, description); err != nil {
				return err
			}

			// The token is only shown here; the store keeps its hash.
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User the key belongs to")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant the admin capability")
	cmd.Flags().BoolVar(&teacher, "teacher", false, "Grant the teacher capability")
	cmd.Flags().StringVar(&description, "description", "", "Free-form key description")

	return cmd
}
