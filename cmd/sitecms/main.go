package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-sitecms"
)

var moduleBuilder = func(ctx context.Context, cfg sitecms.Config) (*sitecms.Module, error) {
	return sitecms.New(ctx, cfg)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "sitecms: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "sitecms",
		Short:         "Multilingual site content service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("SITECMS_CONFIG"), "Path to the YAML configuration file")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newImportNewsCmd(opts),
	)
	return root
}

func (o *rootOptions) load() (sitecms.Config, error) {
	return sitecms.LoadConfig(o.configPath)
}
