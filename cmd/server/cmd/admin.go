package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/portal-acara/server/internal/auth"
	"github.com/portal-acara/server/internal/domain/ids"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	Long: `Create an admin account directly in the database.

Fails if a user with the given email already exists.

Example:
  server admin create --name "Portal Admin" --email admin@example.ac.id --password <secret>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminName == "" || adminEmail == "" || adminPassword == "" {
			return fmt.Errorf("--name, --email and --password are required")
		}
		if len(adminPassword) < 8 {
			return fmt.Errorf("password must be at least 8 characters")
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()

		const checkQuery = `SELECT id FROM users WHERE email = $1 LIMIT 1`
		var existingID string
		err = pool.QueryRow(ctx, checkQuery, adminEmail).Scan(&existingID)
		if err == nil {
			return fmt.Errorf("a user with email %s already exists", adminEmail)
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("check existing user: %w", err)
		}

		hash, err := auth.HashPassword(adminPassword)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		id, err := ids.NewULID()
		if err != nil {
			return fmt.Errorf("generate id: %w", err)
		}

		const insertQuery = `
INSERT INTO users (id, name, email, password_hash, role)
VALUES ($1, $2, $3, $4, 'admin')`
		if _, err := pool.Exec(ctx, insertQuery, id, adminName, adminEmail, hash); err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", adminName, id)
		return nil
	},
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminName, "name", "", "display name")
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "login email")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "password (min 8 characters)")

	adminCmd.AddCommand(adminCreateCmd)
}
