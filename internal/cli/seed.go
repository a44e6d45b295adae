package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/yasite/internal/db"
	"github.com/yasite/internal/service"
	"gorm.io/gorm"
)

var demoUsers = []string{"author", "reader"}

var demoNotes = []service.NoteForm{
	{Title: "Список покупок", Text: "Хлеб, молоко, **кофе**."},
	{Title: "Идеи для отпуска", Text: "Горы или море?", Slug: "vacation"},
}

var demoComments = []string{
	"Интересная новость, спасибо!",
	"А где можно почитать подробнее?",
	"Согласен с предыдущим комментарием.",
}

func newSeedCmd() *cobra.Command {
	var (
		password  string
		newsCount int
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty database with demo data",
		Long:  `Create the demo users "author" and "reader", a batch of news with comments, and a few notes. Does nothing if users already exist.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if newsCount < 0 {
				return fmt.Errorf("--news must be 0 or greater, got %d", newsCount)
			}
			if err := openDatabase(); err != nil {
				return err
			}
			defer closeDatabase()

			return seedDemoData(db.DB, password, newsCount, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&password, "password", "demo-password", "password for the demo users")
	cmd.Flags().IntVar(&newsCount, "news", 12, "number of news to create")
	return cmd
}

// seedDemoData 生成演示数据；已有普通用户时跳过。
func seedDemoData(gdb *gorm.DB, password string, newsCount int, out io.Writer) error {
	var count int64
	if err := gdb.Model(&db.User{}).Where("username IN ?", demoUsers).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		fmt.Fprintln(out, "demo users already exist, skipping")
		return nil
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		users := service.NewUserService(tx)
		var authors []*db.User
		for _, name := range demoUsers {
			user, err := users.Create(name, password)
			if err != nil {
				return fmt.Errorf("create user %s: %w", name, err)
			}
			authors = append(authors, user)
		}

		today := db.Today()
		items := make([]service.NewsInput, 0, newsCount)
		for i := 0; i < newsCount; i++ {
			items = append(items, service.NewsInput{
				Title: fmt.Sprintf("Новость %d", i+1),
				Text:  fmt.Sprintf("Текст новости номер %d.", i+1),
				Date:  today.AddDate(0, 0, -i),
			})
		}
		created, err := service.NewNewsService(tx, newsCount).Import(items)
		if err != nil {
			return err
		}

		comments := service.NewCommentService(tx)
		if len(created) > 0 {
			for i, text := range demoComments {
				author := authors[i%len(authors)]
				if _, err := comments.Create(created[0].ID, author.ID, &service.CommentForm{Text: text}); err != nil {
					return fmt.Errorf("create comment: %w", err)
				}
			}
		}

		notes := service.NewNoteService(tx)
		for _, form := range demoNotes {
			form := form
			if _, err := notes.Create(authors[0].ID, &form); err != nil {
				return fmt.Errorf("create note %q: %w", form.Title, err)
			}
		}

		appLogger.Info("demo data created",
			slog.Int("users", len(authors)),
			slog.Int("news", len(created)),
			slog.Int("comments", len(demoComments)),
			slog.Int("notes", len(demoNotes)),
		)
		fmt.Fprintf(out, "created %d users, %d news, %d comments, %d notes\n",
			len(authors), len(created), len(demoComments), len(demoNotes))
		return nil
	})
}
