package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-sitecms/internal/migrations"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if !strings.EqualFold(cfg.Storage.Provider, "bun") {
				return errors.New("migrate requires storage.provider bun")
			}
			// Opening the container applies every registered migration.
			module, err := moduleBuilder(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer module.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "applied: %s\n", strings.Join(migrations.Default().Names(), ", "))
			return nil
		},
	}
}
