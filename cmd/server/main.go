package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/wolfeidau/sessionauth/cmd/server/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug    bool `help:"Enable debug mode." env:"SESSIONAUTH_DEBUG"`
		Version  kong.VersionFlag
		Serve    commands.ServeCmd    `cmd:"" help:"Start the HTTP server"`
		Migrate  commands.MigrateCmd  `cmd:"" help:"Apply database migrations"`
		User     commands.UserCmd     `cmd:"" help:"Manage users"`
		Sessions commands.SessionsCmd `cmd:"" help:"Manage sessions"`
	}
)

func main() {
	// a missing .env is fine, real environment variables still apply
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("sessionauth"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
