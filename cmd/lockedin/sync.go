package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func syncCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push every stored task mirror to its profile now",
		Long: `Run the daily mirror sync once, outside the schedule.

Examples:
  lockedin sync
  lockedin sync --redis-addr localhost:6379`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.syncer.SyncAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Synced %d, skipped %d, failed %d\n", res.Synced, res.Skipped, res.Failed)
			return nil
		},
	}
}
