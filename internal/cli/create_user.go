package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrlokans/campaigner/internal/auth"
	"github.com/mrlokans/campaigner/internal/config"
	"github.com/mrlokans/campaigner/internal/database"
	"github.com/mrlokans/campaigner/internal/database/users"
	"github.com/mrlokans/campaigner/internal/entities"
)

// CreateUserCommand creates a local account from the command line.
type CreateUserCommand struct {
	Username     string
	Email        string
	Password     string
	Role         string
	DatabasePath string
	WithToken    bool

	Auth config.Auth
	Out  io.Writer
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{Out: os.Stdout}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)

	dbPath := cmd.DatabasePath
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath
	}

	fs.StringVar(&cmd.Username, "username", "", "Login name (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password, at least 12 characters (required)")
	fs.StringVar(&cmd.Role, "role", string(entities.UserRoleEditor), "Role: admin, editor or viewer")
	fs.StringVar(&cmd.DatabasePath, "db", dbPath, "Path to the database file")
	fs.BoolVar(&cmd.WithToken, "token", false, "Also generate an API token and print it")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username <name> -email <email> -password <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case cmd.Username == "":
		return fmt.Errorf("required flag -username not provided")
	case cmd.Email == "":
		return fmt.Errorf("required flag -email not provided")
	case cmd.Password == "":
		return fmt.Errorf("required flag -password not provided")
	}
	if !entities.UserRole(cmd.Role).Valid() {
		return fmt.Errorf("invalid role %q", cmd.Role)
	}
	return nil
}

func (cmd *CreateUserCommand) Run() error {
	out := cmd.Out
	if out == nil {
		out = os.Stdout
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	service := auth.NewService(users.NewRepository(db.DB), cmd.Auth)

	user, err := service.CreateUser(cmd.Username, cmd.Email, cmd.Password, entities.UserRole(cmd.Role))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	fmt.Fprintf(out, "Created %s user %q (id %d)\n", user.Role, user.Username, user.ID)

	if cmd.WithToken {
		token, err := service.GenerateToken(user.ID)
		if err != nil {
			return fmt.Errorf("failed to generate token: %w", err)
		}
		fmt.Fprintf(out, "API token (shown once): %s\n", token)
	}
	return nil
}
