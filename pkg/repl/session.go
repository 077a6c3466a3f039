/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dburkart/lens/pkg/builder"
	"github.com/dburkart/lens/pkg/engine"
	"github.com/dburkart/lens/pkg/media"
	"github.com/dburkart/lens/pkg/query"
	"github.com/dburkart/lens/pkg/runner"
	"github.com/dburkart/lens/pkg/transform"
	"github.com/rs/zerolog"
)

// ErrExit is returned by Exec when the user asks to leave.
var ErrExit = errors.New("exit")

var errNoQuery = errors.New("no query, start with camera, filter, query or folder")

// Session is a viewport over one unified query and its results, driven one
// command at a time.
type Session struct {
	log    zerolog.Logger
	engine *engine.Engine
	w      io.Writer
	out    OutputWriter
	now    func() time.Time

	query      *query.UnifiedQuery
	results    media.Items
	fetched    time.Time
	conditions runner.ConditionState
}

func NewSession(log zerolog.Logger, e *engine.Engine, w io.Writer, format string) *Session {
	return &Session{
		log:        log,
		engine:     e,
		w:          w,
		out:        NewOutputWriter(w, format),
		now:        time.Now,
		conditions: runner.ConditionState{},
	}
}

// Query returns the session's current query.
func (s *Session) Query() *query.UnifiedQuery {
	return s.query
}

// Results returns the results of the current query.
func (s *Session) Results() media.Items {
	return s.results
}

// Exec parses and runs a line of input.
func (s *Session) Exec(ctx context.Context, line string) error {
	cmd, err := ParseCommand(line)
	if err != nil {
		return err
	}
	s.log.Trace().Str("cmd", cmd.Name).Strs("args", cmd.Args).Msg("exec")

	switch cmd.Name {
	case CommandExit:
		return ErrExit
	case CommandHelp:
		_, err = io.WriteString(s.w, Usage())
		return err
	case CommandCamera:
		if _, ok := s.engine.Cameras.Camera(cmd.Args[0]); !ok {
			return fmt.Errorf("unknown camera: %s", cmd.Args[0])
		}
		return s.run(ctx, s.engine.Builder.BuildDefaultCameraQuery(cmd.Args[0], builder.Options{}))
	case CommandFilter:
		return s.filter(ctx, cmd)
	case CommandQuery:
		return s.mediaQuery(ctx, cmd)
	case CommandFolder:
		return s.folder(ctx, cmd)
	case CommandSet:
		key, value, ok := strings.Cut(cmd.Args[0], "=")
		if !ok || key == "" {
			return fmt.Errorf("expected key=value, got %q", cmd.Args[0])
		}
		s.conditions[key] = value
		return nil
	case CommandShow:
		if s.query == nil {
			return errNoQuery
		}
		_, err = io.WriteString(s.w, s.query.String())
		return err
	}

	// Everything below works on the current query
	if s.query == nil {
		return errNoQuery
	}

	switch cmd.Name {
	case CommandEarlier:
		return s.extend(ctx, media.Earlier)
	case CommandLater:
		return s.extend(ctx, media.Later)
	case CommandStrip:
		return s.run(ctx, transform.StripTimeRange(s.query))
	case CommandClips:
		return s.run(ctx, transform.ConvertToClips(s.query))
	case CommandRange:
		return s.rangeQuery(ctx, cmd)
	case CommandLimit:
		limit, err := strconv.Atoi(cmd.Args[0])
		if err != nil || limit < 0 {
			return fmt.Errorf("invalid limit: %q", cmd.Args[0])
		}
		return s.run(ctx, transform.Rebuild(s.query, transform.RebuildOptions{Limit: &limit}))
	case CommandFresh:
		state := "stale"
		if s.engine.Runner.AreResultsFresh(s.fetched, s.query) {
			state = "fresh"
		}
		_, err = fmt.Fprintf(s.w, "results are %s (fetched %s)\n", state, s.fetched.Format(time.RFC3339))
		return err
	}

	return fmt.Errorf("unhandled command: %s", cmd.Name)
}

func (s *Session) filter(ctx context.Context, cmd Command) error {
	params, err := cmd.Params()
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
	return s.run(ctx, s.engine.Builder.BuildFilterQuery(builder.ParseList(params, "camera"), kinds, opts))
}

func (s *Session) mediaQuery(ctx context.Context, cmd Command) error {
	kind := query.MediaKind(cmd.Args[0])
	if !builder.IsMediaKind(kind) {
		return fmt.Errorf("unknown media kind: %s", cmd.Args[0])
	}

	params, err := Command{Args: cmd.Args[1:]}.Params()
	if err != nil {
		return err
	}
	opts, err := builder.ParseOptions(params)
	if err != nil {
		return err
	}
	cameras := builder.ParseList(params, "camera")
	if cameras == nil {
		cameras = query.NewSet(s.engine.Cameras.CameraIDs()...)
	}
	return s.run(ctx, s.engine.Builder.BuildMediaQuery(kind, cameras, opts))
}

func (s *Session) folder(ctx context.Context, cmd Command) error {
	folder, ok := s.engine.Folders.Folder(cmd.Args[0])
	if !ok {
		return fmt.Errorf("unknown folder: %s", cmd.Args[0])
	}
	if len(cmd.Args) == 1 {
		return s.run(ctx, s.engine.Builder.BuildDefaultFolderQuery(folder.ID))
	}

	path := []query.PathComponent{{ID: folder.Root, Title: folder.Title}}
	for _, part := range strings.Split(cmd.Args[1], "/") {
		if part != "" {
			path = append(path, query.PathComponent{ID: part})
		}
	}
	return s.run(ctx, s.engine.Builder.BuildFolderQuery(folder, path, builder.FolderOptions{}))
}

func (s *Session) rangeQuery(ctx context.Context, cmd Command) error {
	var opts transform.RebuildOptions

	start, err := builder.ParseTime(cmd.Args[0], s.now())
	if err != nil {
		return fmt.Errorf("invalid start: %q", cmd.Args[0])
	}
	opts.Start = &start

	if len(cmd.Args) == 2 {
		end, err := builder.ParseTime(cmd.Args[1], s.now())
		if err != nil {
			return fmt.Errorf("invalid end: %q", cmd.Args[1])
		}
		if end.Before(start) {
			return errors.New("end is before start")
		}
		opts.End = &end
	}

	return s.run(ctx, transform.Rebuild(s.query, opts))
}

// run makes q the current query and shows its results.
func (s *Session) run(ctx context.Context, q *query.UnifiedQuery) error {
	if q == nil {
		return errors.New("nothing to show for that request")
	}

	results, err := s.engine.Runner.Execute(ctx, q, runner.ExecuteOptions{UseCache: true, Conditions: s.conditions})
	if err != nil {
		return err
	}

	s.query = q
	s.results = results
	s.fetched = s.now()
	return s.out.Write(results)
}

func (s *Session) extend(ctx context.Context, direction media.Direction) error {
	ext, err := s.engine.Runner.Extend(ctx, s.query, s.results, direction, runner.ExecuteOptions{Conditions: s.conditions})
	if err != nil {
		return err
	}
	if ext == nil {
		_, err = fmt.Fprintf(s.w, "no %s results\n", direction)
		return err
	}

	s.query = ext.Query
	s.results = ext.Results
	s.fetched = s.now()
	return s.out.Write(s.results)
}
