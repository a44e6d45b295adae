package cli

import (
	"log/slog"

	"github.com/yasite/internal/db"
)

// openDatabase 初始化全局连接，并按配置确保超级用户存在。
func openDatabase() error {
	if err := db.Init(cfg.DatabasePath); err != nil {
		appLogger.Error("failed to initialize database",
			slog.String("path", cfg.DatabasePath),
			slog.String("error", err.Error()),
		)
		return err
	}

	if err := db.EnsureUser(db.DB, cfg.SuperRootUserName, cfg.SuperRootPassword); err != nil {
		appLogger.Error("failed to ensure super root user", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func closeDatabase() {
	if err := db.Close(db.DB); err != nil {
		appLogger.Warn("failed to close database", slog.String("error", err.Error()))
	}
	db.DB = nil
}
