// Package commands wires the gamevault console application together.
package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/gamevault/gamevault/pkg/store"
)

var (
	// Global flags
	host    string
	sslMode string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gamevault",
	Short: "GameVault - console front end for the game rental store",
	Long: `GameVault is the console front end for the game rental store database.

It connects to PostgreSQL and offers account creation, login, profile
management, catalog browsing, rental order placement, and shipment
tracking, with employee and manager administration behind role checks.

Commands:
  shell   - run the interactive store session
  initdb  - create the store tables (optionally with a demo catalog)`,
	Version: "1.2.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "localhost", "Database host")
	rootCmd.PersistentFlags().StringVar(&sslMode, "sslmode", "prefer", "Postgres sslmode")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (logs every statement)")

	// Connection settings can come from the environment: GAMEVAULT_HOST,
	// GAMEVAULT_PASSWORD, GAMEVAULT_SSLMODE. The password has no flag on
	// purpose; it defaults to empty.
	viper.SetEnvPrefix("gamevault")
	viper.AutomaticEnv()
	viper.SetDefault("password", "")
	_ = viper.BindPFlag("host", rootCmd.PersistentFlags().Lookup("host"))
	_ = viper.BindPFlag("sslmode", rootCmd.PersistentFlags().Lookup("sslmode"))
}

// newLogger builds the session logger. Quiet by default so log lines don't
// tear the menus; --verbose enables statement logging on stderr.
func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// connect opens the database using the three positional arguments
// (<dbname> <port> <user>) layered with flag and environment settings.
func connect(ctx context.Context, args []string, log *zap.Logger) (*store.DB, error) {
	port, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, fmt.Errorf("port must be a number, got %q", args[1])
	}

	config := store.DefaultConfig()
	config.Database = args[0]
	config.Port = port
	config.User = args[2]
	config.Host = viper.GetString("host")
	config.Password = viper.GetString("password")
	config.SSLMode = viper.GetString("sslmode")

	db, err := store.Connect(ctx, config, log)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database (is postgres running?): %w", err)
	}
	return db, nil
}
