// ABOUTME: Entry point for gartrix
// ABOUTME: Loads configuration, opens the store, and persists configuration on shutdown

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/gartrix/internal/config"
	"github.com/2389/gartrix/internal/database"
	"github.com/2389/gartrix/internal/store"
)

// version is set at build time.
var version = "dev"

const banner = `
                  _        _
   __ _  __ _ _ _| |_ _ __(_)_  __
  / _' |/ _' | '_|  _| '__| \ \/ /
 | (_| | (_| | | | |_| |  | |>  <
  \__, |\__,_|_|  \__|_|  |_/_/\_\
  |___/
`

// getConfigPath returns the path to the config file.
// Priority: GARTRIX_CONFIG env var > ./config.json
func getConfigPath() string {
	if envPath := os.Getenv(config.EnvPrefix + "CONFIG"); envPath != "" {
		return envPath
	}
	return config.DefaultPath
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: gartrix <command>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve          Open the store and run until interrupted")
	fmt.Fprintln(w, "  init           Create the entity tables")
	fmt.Fprintln(w, "  list <kind>    List users, devices, messages or altnames")
	fmt.Fprintln(w, "  version        Print the version")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stdout)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit(ctx)
	case "list":
		err = runList(ctx, os.Args[2:], os.Stdout)
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads and validates the config and installs the logger it describes.
func loadConfig() (*config.Config, string, error) {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("validating config: %w", err)
	}

	slog.SetDefault(setupLogger(cfg.Logging, os.Stderr))
	return cfg, configPath, nil
}

func runServe(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, configPath, err := loadConfig()
	if err != nil {
		return err
	}

	conn, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Base URL:  %s\n", cfg.BaseURL)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n\n", conn.Address())

	slog.Info("starting gartrix", "config", configPath, "base_url", cfg.BaseURL)

	<-ctx.Done()
	slog.Info("shutting down")

	closeErr := conn.Close()

	// The effective configuration, env overrides included, outlives the process.
	if err := cfg.Write(configPath); err != nil {
		return fmt.Errorf("persisting config: %w", err)
	}
	return closeErr
}

func runInit(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	conn, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer conn.Close()

	if err := store.CreateTables(ctx, conn); err != nil {
		return err
	}

	color.New(color.FgGreen).Print("✓ ")
	fmt.Printf("Tables ready in %s\n", conn.Address())
	return nil
}

func runList(ctx context.Context, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("list takes exactly one kind: users, devices, messages, altnames")
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	conn, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer conn.Close()

	return listKind(ctx, conn, args[0], out)
}

func listKind(ctx context.Context, db store.Executor, kind string, out io.Writer) error {
	switch kind {
	case "users":
		return list[store.User](ctx, db, out, func(u *store.User) string {
			return fmt.Sprintf("%s  %s", u.ID(), u.Username)
		})
	case "devices":
		return list[store.Device](ctx, db, out, func(d *store.Device) string {
			return fmt.Sprintf("%s  user=%s  %s", d.ID(), d.User, d.Name)
		})
	case "messages":
		return list[store.Message](ctx, db, out, func(m *store.Message) string {
			return fmt.Sprintf("%s  user=%s  %s  %q", m.ID(), m.User, m.Date.Format("2006-01-02 15:04:05"), m.Body)
		})
	case "altnames":
		return list[store.UserAltName](ctx, db, out, func(a *store.UserAltName) string {
			return fmt.Sprintf("%s  user=%s  %s  added=%d", a.ID(), a.User, a.Nickname, a.Added)
		})
	default:
		return fmt.Errorf("unknown kind %q (want users, devices, messages, altnames)", kind)
	}
}

// list prints every decodable entity of T and warns when rows were skipped.
func list[T any, P store.Record[T]](ctx context.Context, db store.Executor, out io.Writer, line func(P) string) error {
	items, err := store.GetAll[T, P](ctx, db)
	if err != nil {
		return err
	}
	total, err := store.Count[T, P](ctx, db)
	if err != nil {
		return err
	}

	for _, item := range items {
		fmt.Fprintln(out, line(P(item)))
	}

	if skipped := total - int64(len(items)); skipped > 0 {
		fmt.Fprintln(out, color.YellowString("%d of %d rows could not be decoded", skipped, total))
	}
	return nil
}
