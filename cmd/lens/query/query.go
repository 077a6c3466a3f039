/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package query

import (
	"context"
	"net/url"
	"os"
	"strings"

	"github.com/dburkart/lens/internal/config"
	"github.com/dburkart/lens/pkg/builder"
	"github.com/dburkart/lens/pkg/repl"
	"github.com/dburkart/lens/pkg/runner"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Command = &cobra.Command{
	Use:   "query [key=value ...]",
	Short: "Run a single filter query and print its results",
	Example: "  lens query camera=front,back media=clips what=person\n" +
		"  lens query media=recordings start=2024-01-01T00:00:00Z",

	RunE: func(cmd *cobra.Command, args []string) error {
		log := viper.Get("logger").(zerolog.Logger)
		ctx := context.Background()

		params, err := parseArgs(args)
		if err != nil {
			return err
		}
		opts, err := builder.ParseOptions(params)
		if err != nil {
			return err
		}
		kinds, err := builder.ParseKinds(params)
		if err != nil {
			return err
		}

		e, err := config.Engine(ctx, log, viper.GetViper(), nil)
		if err != nil {
			return err
		}
		defer e.Catalog.Close()

		q := e.Builder.BuildFilterQuery(builder.ParseList(params, "camera"), kinds, opts)
		if viper.GetBool("query.show") {
			os.Stderr.WriteString(q.String())
		}

		results, err := e.Runner.Execute(ctx, q, runner.ExecuteOptions{})
		if err != nil {
			return err
		}
		return repl.NewOutputWriter(os.Stdout, viper.GetString("query.output")).Write(results)
	},
}

func init() {
	// Flags for this command
	Command.Flags().StringP("output", "o", "text", "Output format of results [csv, json, text]")
	Command.Flags().Bool("show", false, "Print the unified query to stderr before running it")

	// Bind flags to viper
	viper.BindPFlag("query.output", Command.Flags().Lookup("output"))
	viper.BindPFlag("query.show", Command.Flags().Lookup("show"))
}

func parseArgs(args []string) (url.Values, error) {
	params := url.Values{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, errors.Errorf("expected key=value, got %q", arg)
		}
		params.Add(key, value)
	}
	return params, nil
}
