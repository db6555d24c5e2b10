package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/autosense/internal/profile"
	"github.com/hrygo/autosense/server"
	"github.com/hrygo/autosense/store"
	"github.com/hrygo/autosense/store/db/sqlite"
)

const version = "0.9.0"

var rootCmd = &cobra.Command{
	Use:   "autosense",
	Short: "Vehicle trouble diagnostic dialogue server",
	RunE: func(_ *cobra.Command, _ []string) error {
		prof := &profile.Profile{
			Mode:               viper.GetString("mode"),
			Addr:               viper.GetString("addr"),
			Port:               viper.GetInt("port"),
			Data:               viper.GetString("data"),
			DSN:                viper.GetString("dsn"),
			Driver:             viper.GetString("driver"),
			SessionTTLSeconds:  viper.GetInt("session-ttl-seconds"),
			MaxDiagnosticTurns: viper.GetInt("max-diagnostic-turns"),
			Version:            version,
		}
		prof.FromEnv()
		if err := prof.Validate(); err != nil {
			return err
		}
		return run(prof)
	},
}

func init() {
	rootCmd.Flags().String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.Flags().String("addr", "", "address of server")
	rootCmd.Flags().Int("port", 8230, "port of server")
	rootCmd.Flags().String("data", "", "data directory")
	rootCmd.Flags().String("driver", "sqlite", "database driver")
	rootCmd.Flags().String("dsn", "", "database source name")
	rootCmd.Flags().Int("session-ttl-seconds", 3600, "idle seconds before a session expires")
	rootCmd.Flags().Int("max-diagnostic-turns", 8, "question budget of the diagnostic loop")

	if err := viper.BindPFlags(rootCmd.Flags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("autosense")
	viper.AutomaticEnv()
}

func run(prof *profile.Profile) error {
	if err := os.MkdirAll(prof.Data, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver, err := sqlite.NewDB(prof)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	st := store.New(driver, prof)
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	if prof.Mode == "demo" {
		if err := seedDemoData(ctx, st); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return server.NewServer(prof, st).Start(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
