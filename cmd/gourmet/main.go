package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/gourmet/internal/profile"
	"github.com/hrygo/gourmet/internal/version"
	"github.com/hrygo/gourmet/server"
	"github.com/hrygo/gourmet/store"
	"github.com/hrygo/gourmet/store/db"
)

var rootCmd = &cobra.Command{
	Use:   "gourmet",
	Short: `A content recommendation service. Embedding-based retrieval with taste profiles that adapt to explicit feedback.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Try to load .env from the current directory; absence is fine, the
		// environment may carry the configuration directly.
		_ = godotenv.Load()
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:    viper.GetString("mode"),
			Addr:    viper.GetString("addr"),
			Port:    viper.GetInt("port"),
			Driver:  viper.GetString("driver"),
			DSN:     viper.GetString("dsn"),
			Secret:  viper.GetString("secret"),
			Version: version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			panic(err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			cancel()
			printDatabaseError(err, instanceProfile)
			slog.Error("failed to create db driver", "error", err)
			return
		}

		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			cancel()
			slog.Error("failed to migrate", "error", err)
			return
		}

		s, err := server.NewServer(ctx, instanceProfile, storeInstance)
		if err != nil {
			cancel()
			slog.Error("failed to create server", "error", err)
			return
		}

		c := make(chan os.Signal, 1)
		// Trigger graceful shutdown on SIGINT or SIGTERM. SIGTERM is what
		// process managers (systemd, Kubernetes) send first.
		signal.Notify(c, terminationSignals...)

		if err := s.Start(ctx); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				slog.Error("failed to start server", "error", err)
				cancel()
			}
		}

		printGreetings(instanceProfile)

		go func() {
			<-c
			s.Shutdown(ctx)
			cancel()
		}()

		<-ctx.Done()
	},
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "postgres")
	viper.SetDefault("port", 28090)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 28090, "port of server")
	rootCmd.PersistentFlags().String("driver", "postgres", "database driver (postgres, sqlite)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")
	rootCmd.PersistentFlags().String("secret", "", "secret for signing bearer tokens")

	for _, flag := range []string{"mode", "addr", "port", "driver", "dsn", "secret"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("gourmet")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("Gourmet %s started successfully!\n", profile.Version)

	if profile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
		if profile.DSN != "" {
			fmt.Fprintf(os.Stderr, "Database: %s\n", profile.DSN)
		}
	}

	fmt.Printf("Database driver: %s\n", profile.Driver)
	fmt.Printf("Mode: %s\n", profile.Mode)

	if len(profile.Addr) == 0 {
		fmt.Printf("Server running on port %d\n", profile.Port)
	} else {
		fmt.Printf("Server running on %s:%d\n", profile.Addr, profile.Port)
	}
}

// printDatabaseError provides user-friendly error messages for database connection issues.
func printDatabaseError(err error, profile *profile.Profile) {
	fmt.Fprintln(os.Stderr, "\nDatabase connection failed")

	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host"):
		fmt.Fprintln(os.Stderr, "\nPostgreSQL is not running.")
		if profile.Driver == "postgres" {
			fmt.Fprintf(os.Stderr, "   Start it with: sudo systemctl start postgresql\n")
		}
		fmt.Fprintf(os.Stderr, "   Or use SQLite for development: GOURMET_DRIVER=sqlite\n")

	case strings.Contains(errMsg, "SSL is not enabled") || strings.Contains(errMsg, "sslmode"):
		fmt.Fprintln(os.Stderr, "\nPostgreSQL SSL configuration mismatch.")
		fmt.Fprintf(os.Stderr, "   Add ?sslmode=disable to your DSN.\n")

	case strings.Contains(errMsg, "password authentication failed"):
		fmt.Fprintln(os.Stderr, "\nPostgreSQL authentication failed.")
		fmt.Fprintf(os.Stderr, "   Check the credentials in your DSN or .env file.\n")

	case strings.Contains(errMsg, "database") && strings.Contains(errMsg, "does not exist"):
		fmt.Fprintln(os.Stderr, "\nDatabase does not exist.")
		fmt.Fprintf(os.Stderr, "   Create it with: psql -U postgres -c \"CREATE DATABASE gourmet;\"\n")

	case strings.Contains(errMsg, "vector"):
		fmt.Fprintln(os.Stderr, "\npgvector extension missing.")
		fmt.Fprintf(os.Stderr, "   Install it and run: CREATE EXTENSION vector;\n")

	default:
		fmt.Fprintln(os.Stderr, "\nError:", errMsg)
	}

	if _, statErr := os.Stat(".env"); statErr != nil {
		fmt.Fprintf(os.Stderr, "\nTip: create a .env file for local configuration\n")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
