package db

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:db-test-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := Open(dsn)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { Close(gdb) })
	return gdb
}

func TestNewsDefaultsDateToToday(t *testing.T) {
	gdb := openTestDB(t)

	news := News{Title: "Заголовок", Text: "Текст новости"}
	if err := gdb.Create(&news).Error; err != nil {
		t.Fatalf("failed to create news: %v", err)
	}

	if !news.Date.Equal(Today()) {
		t.Fatalf("expected date %v, got %v", Today(), news.Date)
	}
}

func TestNewsKeepsExplicitDateWithoutClock(t *testing.T) {
	gdb := openTestDB(t)

	when := time.Date(2024, 3, 8, 17, 45, 0, 0, time.UTC)
	news := News{Title: "Старая новость", Text: "Текст", Date: when}
	if err := gdb.Create(&news).Error; err != nil {
		t.Fatalf("failed to create news: %v", err)
	}

	want := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	if !news.Date.Equal(want) {
		t.Fatalf("expected date %v, got %v", want, news.Date)
	}
}

func TestCommentCreatedIsSetAutomatically(t *testing.T) {
	gdb := openTestDB(t)

	user := User{Username: "author", Password: "hashed"}
	news := News{Title: "Заголовок", Text: "Текст"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if err := gdb.Create(&news).Error; err != nil {
		t.Fatalf("failed to create news: %v", err)
	}

	comment := Comment{NewsID: news.ID, AuthorID: user.ID, Text: "Текст комментария"}
	if err := gdb.Create(&comment).Error; err != nil {
		t.Fatalf("failed to create comment: %v", err)
	}
	if comment.Created.IsZero() {
		t.Fatal("expected created timestamp to be populated")
	}
}

func TestNoteSlugIsUniqueInDatabase(t *testing.T) {
	gdb := openTestDB(t)

	user := User{Username: "author", Password: "hashed"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	first := Note{Title: "Первая", Text: "Текст", Slug: "slug", AuthorID: user.ID}
	if err := gdb.Create(&first).Error; err != nil {
		t.Fatalf("failed to create note: %v", err)
	}

	second := Note{Title: "Вторая", Text: "Текст", Slug: "slug", AuthorID: user.ID}
	if err := gdb.Create(&second).Error; err == nil {
		t.Fatal("expected duplicate slug to be rejected by the database")
	}
}

func TestEnsureUserCreatesHashedAccountOnce(t *testing.T) {
	gdb := openTestDB(t)

	if err := EnsureUser(gdb, " admin ", "s3cret-pass"); err != nil {
		t.Fatalf("EnsureUser returned error: %v", err)
	}
	if err := EnsureUser(gdb, "admin", "another-pass"); err != nil {
		t.Fatalf("EnsureUser returned error on second call: %v", err)
	}

	var users []User
	if err := gdb.Find(&users).Error; err != nil {
		t.Fatalf("failed to load users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected exactly one user, got %d", len(users))
	}
	if users[0].Password == "s3cret-pass" {
		t.Fatal("expected password to be hashed")
	}
	if !users[0].CheckPassword("s3cret-pass") {
		t.Fatal("expected stored hash to match the plain password")
	}
}

func TestEnsureUserSkipsBlankCredentials(t *testing.T) {
	gdb := openTestDB(t)

	if err := EnsureUser(gdb, "", "password"); err != nil {
		t.Fatalf("EnsureUser returned error: %v", err)
	}

	var count int64
	gdb.Model(&User{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no users, got %d", count)
	}
}
