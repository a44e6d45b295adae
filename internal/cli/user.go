package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yasite/internal/db"
	"github.com/yasite/internal/service"
)

func newUserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	userCmd.AddCommand(newUserCreateCmd())
	return userCmd
}

func newUserCreateCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user account",
		Long:  `Create a user with the same validation as the signup form. Without --password the password is read from stdin.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			if err := openDatabase(); err != nil {
				return err
			}
			defer closeDatabase()

			user, err := service.NewUserService(db.DB).Create(args[0], password)
			if err != nil {
				return fmt.Errorf("create user %s: %w", args[0], err)
			}

			appLogger.Info("user created", slog.String("username", user.Username))
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password for the new user")
	return cmd
}
