package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Version = "dev"

func main() {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:     "lockedin",
		Short:   "LockedIn - daily goals and tasks API",
		Version: Version,
	}

	rootCmd.PersistentFlags().String("env", "", "environment (development, production)")
	rootCmd.PersistentFlags().String("database-url", "", "postgres://, mysql:// or SQLite file path")
	rootCmd.PersistentFlags().String("redis-addr", "", "redis address for the local store and sessions")
	rootCmd.PersistentFlags().String("log-file", "", "JSON log file, rotated")
	bindFlag(v, "ENVIRONMENT", rootCmd.PersistentFlags().Lookup("env"))
	bindFlag(v, "DATABASE_URL", rootCmd.PersistentFlags().Lookup("database-url"))
	bindFlag(v, "REDIS_ADDR", rootCmd.PersistentFlags().Lookup("redis-addr"))
	bindFlag(v, "LOG_FILE", rootCmd.PersistentFlags().Lookup("log-file"))

	rootCmd.AddCommand(serveCmd(v))
	rootCmd.AddCommand(migrateCmd(v))
	rootCmd.AddCommand(syncCmd(v))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
