/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package lens

import (
	"fmt"
	"os"
	"time"

	"github.com/dburkart/lens/cmd/lens/query"
	"github.com/dburkart/lens/cmd/lens/seed"
	"github.com/dburkart/lens/cmd/lens/serve"
	"github.com/dburkart/lens/cmd/lens/shell"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Version        = "develop"
	CommitHash     = "n/a"
	BuildTimestamp = "n/a"

	rootCmd = &cobra.Command{
		Use:   "lens",
		Short: "Lens answers unified queries over camera media and folders",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogging()
			initLogLevel()
			initConfig(cmd.Root().PersistentFlags().Lookup("config").Value.String())
			// The config file may have named a log file
			initLogging()
			initLogLevel()
			traceConfig()
		},
		Version: Version,
	}
)

func init() {
	// Configure the root binary options
	rootCmd.PersistentFlags().CountP("verbose", "v", "-v for debug logs (-vv for trace)")
	rootCmd.PersistentFlags().Bool("local", true, "Configures the logger to print readable logs")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the lens config file (default ./config.toml)")

	// Bind viper config to the root flags
	viper.BindPFlag("lens.local", rootCmd.PersistentFlags().Lookup("local"))
	viper.BindPFlag("lens.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	viper.SetDefault("catalog.driver", "memory")
	viper.SetDefault("cache.ttl", time.Minute)
	viper.SetDefault("runner.folder-concurrency", 4)
	viper.SetDefault("log.max-size", 100)
	viper.SetDefault("log.max-backups", 3)
	viper.SetDefault("log.max-age", 28)

	rootCmd.SetVersionTemplate(fmt.Sprintf("lens version: %s git_commit: %s build_time: %s\n", Version, CommitHash, BuildTimestamp))

	viper.AutomaticEnv()

	// Register commands on the root binary command
	for _, cmd := range []*cobra.Command{serve.Command, shell.Command, query.Command, seed.Command} {
		cmd.Version = rootCmd.Version
		rootCmd.AddCommand(cmd)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("root command failed")
		os.Exit(1)
	}
}
