package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/yasite/internal/db"
	"github.com/yasite/internal/service"
)

func newNewsCmd() *cobra.Command {
	newsCmd := &cobra.Command{
		Use:   "news",
		Short: "Manage news items",
	}
	newsCmd.AddCommand(newNewsImportCmd())
	return newsCmd
}

func newNewsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <fixture.yaml>",
		Short: "Import news from a YAML fixture",
		Long: `Import news items from a YAML file of the form

news:
  - title: Заголовок
    text: Текст новости
    date: 2024-05-01

Items without a date get today's date. All items are imported in one transaction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			items, err := service.ParseNewsFixture(f)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			if err := openDatabase(); err != nil {
				return err
			}
			defer closeDatabase()

			created, err := service.NewNewsService(db.DB, cfg.HomeNewsCount).Import(items)
			if err != nil {
				return err
			}

			appLogger.Info("news imported",
				slog.String("file", args[0]),
				slog.Int("count", len(created)),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d news\n", len(created))
			return nil
		},
	}
}
