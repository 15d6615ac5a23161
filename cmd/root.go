package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyfort/keyfort/cmd/users"
	"github.com/keyfort/keyfort/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "keyfort",
	Short: "Keyfort authentication server",
	Long: `Keyfort is an authentication and authorization server. It manages user
accounts with argon2id password hashing and issues JWT bearer tokens for
API access.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().String("db-url", "", "Database connection URL (env: DATABASE_URL)")
	rootCmd.PersistentFlags().String("server-addr", "", "Server bind address (env: SERVER_ADDR)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: DEBUG)")

	// Add subcommands
	rootCmd.AddCommand(users.UsersCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
