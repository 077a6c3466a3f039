/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package seed

import (
	"context"

	"github.com/dburkart/lens/internal/config"
	"github.com/dburkart/lens/pkg/catalog"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Command = &cobra.Command{
	Use:   "import <seed.yaml>...",
	Short: "Load media items from seed files into the catalog",
	Args:  cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		log := viper.Get("logger").(zerolog.Logger)
		ctx := context.Background()

		store, err := config.Catalog(ctx, viper.GetViper())
		if err != nil {
			return err
		}
		defer store.Close()

		for _, path := range args {
			items, err := catalog.LoadSeed(path)
			if err != nil {
				return err
			}
			if err = store.Insert(ctx, items...); err != nil {
				return err
			}
			log.Info().Str("file", path).Int("items", len(items)).Msg("imported")
		}

		n, err := store.Len(ctx)
		if err != nil {
			return err
		}
		log.Info().Int("items", n).Msg("catalog size")
		return nil
	},
}
