package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/yasite/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:service-%d?mode=memory&cache=shared&_foreign_keys=on", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(gdb); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})
	return gdb
}

func createTestUser(t *testing.T, gdb *gorm.DB, username string) db.User {
	t.Helper()

	user := db.User{Username: username, Password: "hashed"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func createTestNews(t *testing.T, gdb *gorm.DB, title string, date time.Time) db.News {
	t.Helper()

	news := db.News{Title: title, Text: "Текст новости", Date: date}
	if err := gdb.Create(&news).Error; err != nil {
		t.Fatalf("failed to create news %s: %v", title, err)
	}
	return news
}
