package users

import (
	"bufio"
	"context"
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/keyfort/keyfort/internal/auth"
	"github.com/keyfort/keyfort/internal/config"
	"github.com/keyfort/keyfort/internal/db/bunx"
	"github.com/keyfort/keyfort/internal/db/models"
	"github.com/keyfort/keyfort/internal/repository"
	"github.com/keyfort/keyfort/internal/services/identity"
)

var (
	emailFlag    string
	usernameFlag string
	passwordFlag string
	rolesInput   []string
	stdinFlag    bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Validate required flags
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}

		if usernameFlag == "" {
			return fmt.Errorf("--username flag is required")
		}

		password := passwordFlag
		if stdinFlag {
			// Read password from stdin
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}

		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		if len(password) < identity.MinPasswordLength {
			return fmt.Errorf("password must be at least %d characters", identity.MinPasswordLength)
		}

		// Validate email format
		if _, err := mail.ParseAddress(emailFlag); err != nil {
			return fmt.Errorf("invalid email format: %w", err)
		}

		roles := rolesInput
		if len(roles) == 0 {
			roles = []string{models.DefaultRole}
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		ctx := context.Background()
		userRepo := repository.NewBunUserRepository(db)

		// Hash password with argon2id
		hasher := auth.NewPasswordHasher(auth.DefaultArgon2Params())
		hashedPassword, err := hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		now := time.Now().UTC()
		user := &models.User{
			ID:           uuid.NewString(),
			Username:     usernameFlag,
			Email:        emailFlag,
			PasswordHash: hashedPassword,
			Roles:        models.RoleList(roles),
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Println("User created successfully!")
		fmt.Println("----------------------------------------")
		fmt.Printf("User ID: %s\n", user.ID)
		fmt.Printf("Email: %s\n", user.Email)
		fmt.Printf("Username: %s\n", user.Username)
		fmt.Printf("Roles: %s\n", strings.Join(roles, ", "))
		fmt.Println("----------------------------------------")

		return nil
	},
}
