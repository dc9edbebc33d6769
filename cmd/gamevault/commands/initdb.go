package commands

import (
	"github.com/spf13/cobra"

	"github.com/gamevault/gamevault/cmd/gamevault/output"
)

var seed bool

// initdbCmd creates the store schema.
var initdbCmd = &cobra.Command{
	Use:   "initdb <dbname> <port> <user>",
	Short: "Create the store tables",
	Long: `Create the store tables if they don't exist yet.

Examples:
  gamevault initdb gamerental 5432 postgres          # Tables only
  gamevault initdb gamerental 5432 postgres --seed   # Tables plus a demo catalog`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		log := newLogger()
		defer func() { _ = log.Sync() }()

		db, err := connect(ctx, args, log)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Initialize(ctx); err != nil {
			return err
		}
		output.Success("Store tables ready")

		if seed {
			if err := db.SeedCatalog(ctx); err != nil {
				return err
			}
			output.Success("Demo catalog seeded")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initdbCmd)
	initdbCmd.Flags().BoolVar(&seed, "seed", false, "Also insert a small demo catalog")
}
