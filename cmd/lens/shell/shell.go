/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dburkart/lens/internal/config"
	"github.com/dburkart/lens/pkg/engine"
	"github.com/dburkart/lens/pkg/repl"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Command = &cobra.Command{
	Use:   "shell",
	Short: "Interactive terminal for browsing query results",

	Run: func(cmd *cobra.Command, args []string) {
		log := viper.Get("logger").(zerolog.Logger)
		output := viper.GetString("shell.output")
		if len(filterStringSlice([]string{"csv", "text", "json"}, output)) != 1 {
			log.Fatal().Msg("unsupported output format")
		}

		ctx := context.Background()
		e, err := config.Engine(ctx, log, viper.GetViper(), nil)
		if err != nil {
			log.Fatal().Err(err).Msg("unable to configure the engine")
		}
		defer e.Catalog.Close()

		readlinePrompt(ctx, log, e, output)
	},
}

func init() {
	// Flags for this command
	Command.Flags().StringP("output", "o", "text", "Output format of results [csv, json, text]")

	// Bind flags to viper
	viper.BindPFlag("shell.output", Command.Flags().Lookup("output"))
}

func filterStringSlice(s []string, prefix string) []string {
	retList := []string{}
	for i := range s {
		if strings.HasPrefix(s[i], prefix) {
			retList = append(retList, s[i])
		}
	}
	return retList
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func listCameras(e *engine.Engine) func(string) []string {
	return func(string) []string {
		return e.Cameras.CameraIDs()
	}
}

func listFolders(e *engine.Engine) func(string) []string {
	return func(string) []string {
		var ids []string
		for _, f := range e.Folders.Folders() {
			ids = append(ids, f.ID)
		}
		return ids
	}
}

func newCompleter(e *engine.Engine) *readline.PrefixCompleter {
	kinds := []readline.PrefixCompleterInterface{}
	for _, kind := range []string{"events", "clips", "snapshots", "recordings", "reviews"} {
		kinds = append(kinds, readline.PcItem(kind))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(repl.CommandCamera, readline.PcItemDynamic(listCameras(e))),
		readline.PcItem(repl.CommandFolder, readline.PcItemDynamic(listFolders(e))),
		readline.PcItem(repl.CommandFilter),
		readline.PcItem(repl.CommandQuery, kinds...),
		readline.PcItem(repl.CommandEarlier),
		readline.PcItem(repl.CommandLater),
		readline.PcItem(repl.CommandRange),
		readline.PcItem(repl.CommandLimit),
		readline.PcItem(repl.CommandStrip),
		readline.PcItem(repl.CommandClips),
		readline.PcItem(repl.CommandShow),
		readline.PcItem(repl.CommandFresh),
		readline.PcItem(repl.CommandSet),
		readline.PcItem(repl.CommandHelp),
		readline.PcItem(repl.CommandExit),
	)
}

func readlinePrompt(ctx context.Context, log zerolog.Logger, e *engine.Engine, output string) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36mlens>\033[0m ",
		AutoComplete:    newCompleter(e),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("unable to start the terminal")
	}
	defer rl.Close()

	session := repl.NewSession(log, e, os.Stdout, output)

	// Handle input
	for {
		ln := rl.Line()
		if ln.CanContinue() {
			continue
		} else if ln.CanBreak() {
			break
		}
		line := strings.TrimSpace(ln.Line)
		if line == "" {
			continue
		}

		err := session.Exec(ctx, line)
		if errors.Is(err, repl.ErrExit) {
			break
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	rl.Clean()
}
