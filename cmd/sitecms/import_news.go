package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImportNewsCmd(root *rootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "import-news <content-dir>",
		Short: "Import Markdown news articles with front matter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			module, err := moduleBuilder(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer module.Close()

			result, err := module.News().Import(cmd.Context(), os.DirFS(args[0]), dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "created=%d updated=%d skipped=%d failed=%d\n",
				len(result.Created), len(result.Updated), len(result.Skipped), len(result.Errors))
			for _, importErr := range result.Errors {
				fmt.Fprintf(out, "  error: %v\n", importErr)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("import-news: %d documents failed", len(result.Errors))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory inside the content root")
	return cmd
}
