package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	appName = "stakescope"
	version = "v1.4.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Staking analytics aggregation service",
		Version: version,
		Long: `StakeScope serves read-only staking analytics: operator concentration,
TVS volatility, commission impact, percentile ranks and composite risk,
computed from the analytics store and cached in Redis.`,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(invalidateCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
