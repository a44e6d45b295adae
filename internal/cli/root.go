package cli

import (
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/yasite/internal/config"
	"github.com/yasite/internal/logger"
)

var (
	cfg       *config.AppConfig
	appLogger *slog.Logger
)

// NewRootCmd 构建 yasite 命令树。
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "yasite",
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		Short:             "YaNews and YaNote web sites",
		Long:              `yasite serves the news site with comments and the personal notes site, and manages their data`,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				log.Printf("failed to load configuration: %v", err.Error())
				return err
			}

			appLogger = logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)
			return nil
		},
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newUserCmd())
	rootCmd.AddCommand(newNewsCmd())
	rootCmd.AddCommand(newSeedCmd())
	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
