package main

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/personalai/assistant/internal/migrations"
	"github.com/personalai/assistant/internal/store"
)

var (
	migrateDirection string
	migrateSteps     int
	migrateSeed      bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back the database schema",
	Long: `migrate applies the embedded schema migrations (--direction up, the default)
or rolls back the most recent ones (--direction down). With --seed the demo
dataset is loaded after migrating up; re-seeding is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := context.Background()

		db, err := store.Open(ctx, store.DBConfig{DSN: cfg.DatabaseURL})
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		runner := migrations.NewRunner()
		switch migrateDirection {
		case "up":
			n, err := runner.Up(ctx, db, migrateSteps)
			if err != nil {
				return err
			}
			pterm.Success.Printf("applied %d migration(s)\n", n)
			if migrateSeed {
				if err := runner.Seed(ctx, db); err != nil {
					return err
				}
				pterm.Success.Println("demo data seeded")
			}
		case "down":
			if migrateSeed {
				return fmt.Errorf("--seed cannot be combined with --direction down")
			}
			n, err := runner.Down(ctx, db, migrateSteps)
			if err != nil {
				return err
			}
			pterm.Success.Printf("rolled back %d migration(s)\n", n)
		default:
			return fmt.Errorf("unknown direction %q (want up or down)", migrateDirection)
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDirection, "direction", "up", "up or down")
	migrateCmd.Flags().IntVar(&migrateSteps, "steps", 0, "number of migrations to apply (0 = all) or roll back (0 = 1)")
	migrateCmd.Flags().BoolVar(&migrateSeed, "seed", false, "load the demo dataset after migrating up")
}
