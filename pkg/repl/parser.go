/*
 * Copyright (c) 2022, Gideon Williams gideon@gideonw.com
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package repl

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Shell commands
const (
	CommandCamera  = "camera"
	CommandFilter  = "filter"
	CommandQuery   = "query"
	CommandFolder  = "folder"
	CommandEarlier = "earlier"
	CommandLater   = "later"
	CommandStrip   = "strip"
	CommandRange   = "range"
	CommandLimit   = "limit"
	CommandClips   = "clips"
	CommandShow    = "show"
	CommandFresh   = "fresh"
	CommandSet     = "set"
	CommandHelp    = "help"
	CommandExit    = "exit"
)

type commandSpec struct {
	// Bounds on the argument count, max < 0 is unbounded
	min, max int
	usage    string
}

var commands = map[string]commandSpec{
	CommandCamera:  {1, 1, "camera <id>                 show a camera's default media"},
	CommandFilter:  {0, -1, "filter [key=value ...]      filter media across cameras"},
	CommandQuery:   {1, -1, "query <kind> [key=value ...]  build a single media kind query"},
	CommandFolder:  {1, 2, "folder <id> [path]          list a folder"},
	CommandEarlier: {0, 0, "earlier                     extend results further into the past"},
	CommandLater:   {0, 0, "later                       extend results toward the present"},
	CommandStrip:   {0, 0, "strip                       remove time bounds from the query"},
	CommandRange:   {1, 2, "range <start> [end]         set the query time window (timestamp, now or -1h)"},
	CommandLimit:   {1, 1, "limit <n>                   set the per node result limit"},
	CommandClips:   {0, 0, "clips                       convert event nodes to clips"},
	CommandShow:    {0, 0, "show                        print the current query"},
	CommandFresh:   {0, 0, "fresh                       check whether results are current"},
	CommandSet:     {1, 1, "set <key>=<value>           set a folder condition"},
	CommandHelp:    {0, 0, "help                        list commands"},
	CommandExit:    {0, 0, "exit                        leave the shell"},
}

// Command is a parsed shell line.
type Command struct {
	Name string
	Args []string
}

// ParseCommand parses a single line of shell input.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	name := strings.ToLower(fields[0])
	if name == "quit" {
		name = CommandExit
	}

	spec, ok := commands[name]
	if !ok {
		return Command{}, fmt.Errorf("unknown command: %s", fields[0])
	}

	args := fields[1:]
	if len(args) < spec.min || (spec.max >= 0 && len(args) > spec.max) {
		return Command{}, fmt.Errorf("usage: %s", usageLine(spec))
	}

	return Command{Name: name, Args: args}, nil
}

// usageLine returns the synopsis part of a usage string.
func usageLine(spec commandSpec) string {
	synopsis, _, _ := strings.Cut(spec.usage, "  ")
	return strings.TrimSpace(synopsis)
}

// Params turns key=value arguments into request style parameters.
func (c Command) Params() (url.Values, error) {
	params := url.Values{}
	for _, arg := range c.Args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		params.Add(key, value)
	}
	return params, nil
}

// Usage lists every command, sorted by name.
func Usage() string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString("  " + commands[name].usage + "\n")
	}
	return b.String()
}
