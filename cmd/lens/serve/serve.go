/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dburkart/lens/internal/config"
	"github.com/dburkart/lens/pkg/server"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Command = &cobra.Command{
	Use:   "serve",
	Short: "Serve unified media queries over HTTP",

	Run: func(cmd *cobra.Command, args []string) {
		logger := viper.Get("logger").(zerolog.Logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		metrics := server.NewMetricsStore()
		e, err := config.Engine(ctx, logger, viper.GetViper(), metrics)
		if err != nil {
			logger.Fatal().Err(err).Msg("unable to configure the engine")
		}
		defer e.Catalog.Close()
		metrics.RegisterCollector(server.NewCatalogStatsCollector(e))

		srv := server.New(
			logger,
			e,
			metrics,
			viper.GetInt("server.port"),
			viper.GetInt("server.prom-port"),
		)

		p := pool.New().WithContext(ctx).WithCancelOnError()
		p.Go(srv.ServeAPI)
		p.Go(srv.ServeMetrics)
		if err := p.Wait(); err != nil {
			logger.Fatal().Err(err).Msg("server failed")
		}
	},
}

func init() {
	// Flags for this command
	Command.Flags().IntP("port", "p", 8080, "Port for the query API")
	Command.Flags().Int("prom-port", 2112, "Set the port for /metrics")

	// Bind flags to viper
	viper.BindPFlag("server.port", Command.Flags().Lookup("port"))
	viper.BindPFlag("server.prom-port", Command.Flags().Lookup("prom-port"))
}
