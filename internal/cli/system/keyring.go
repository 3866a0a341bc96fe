package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tracked/internal/cli"
	"github.com/julianstephens/tracked/internal/config"
	"github.com/julianstephens/tracked/internal/keyring"
	"github.com/julianstephens/tracked/internal/storage/postgres"
)

// LoginCmd stores the API token used by client commands.
type LoginCmd struct {
	Token string `help:"API token of the tracked server. Prompted for when omitted."`
}

// promptToken asks for the token without echoing it.
var promptToken = func() (string, error) {
	var token string
	err := huh.NewInput().
		Title("API token").
		EchoMode(huh.EchoModePassword).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("token cannot be empty")
			}
			return nil
		}).
		Value(&token).
		Run()
	return strings.TrimSpace(token), err
}

func (cmd *LoginCmd) Run(ctx *cli.Context) error {
	token := strings.TrimSpace(cmd.Token)
	if token == "" {
		var err error
		if token, err = promptToken(); err != nil {
			return err
		}
	}
	if err := keyring.SetAPIToken(token); err != nil {
		return err
	}
	ctx.Println("✓ API token stored in OS keyring")
	return nil
}

type LogoutCmd struct{}

func (cmd *LogoutCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteAPIToken(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			ctx.Println("No API token stored.")
			return nil
		}
		return err
	}
	ctx.Println("✓ API token removed from OS keyring")
	return nil
}

// KeyringSetCmd stores a PostgreSQL connection string, used with --db keyring.
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring"`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if !config.IsPostgresDSN(cmd.ConnectionString) && !strings.Contains(cmd.ConnectionString, "host=") {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		ctx.Println("⚠️  Warning: Connection string contains embedded credentials.")
		ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}
	ctx.Println("✓ Connection string stored successfully in OS keyring")
	ctx.Println("  Use it with: tracked --db keyring <command>")
	return nil
}

type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return err
	}
	ctx.Println("✓ Connection string removed from OS keyring")
	return nil
}
