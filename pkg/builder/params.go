/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package builder

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dburkart/lens/pkg/query"
	"github.com/pkg/errors"
)

// ParseList collects a parameter given repeatedly or comma separated. It
// returns nil when the parameter is absent.
func ParseList(params url.Values, key string) query.Set[string] {
	var set query.Set[string]
	for _, value := range params[key] {
		for _, v := range strings.Split(value, ",") {
			if v = strings.TrimSpace(v); v == "" {
				continue
			}
			if set == nil {
				set = query.NewSet[string]()
			}
			set.Add(v)
		}
	}
	return set
}

// ParseKinds reads the media parameter. It returns nil when absent.
func ParseKinds(params url.Values) (query.Set[query.MediaKind], error) {
	names := ParseList(params, "media")
	if names == nil {
		return nil, nil
	}

	kinds := query.NewSet[query.MediaKind]()
	for name := range names {
		kind := query.MediaKind(name)
		if !IsMediaKind(kind) {
			return nil, fmt.Errorf("unknown media kind: %q", name)
		}
		kinds.Add(kind)
	}
	return kinds, nil
}

// IsMediaKind reports whether kind can be built into media nodes.
func IsMediaKind(kind query.MediaKind) bool {
	return kind == query.KindEvents || slices.Contains(query.ViewableKinds, kind)
}

func ParseLimit(params url.Values) (int, error) {
	raw := params.Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("invalid limit: %q", raw)
	}
	return limit, nil
}

func parseTime(params url.Values, key string) (*time.Time, error) {
	raw := params.Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := ParseTime(raw, time.Now())
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", key)
	}
	return &t, nil
}

func parseBool(params url.Values, key string) (*bool, error) {
	raw := params.Get(key)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return &b, nil
}

// ParseOptions reads builder options from request style parameters.
func ParseOptions(params url.Values) (Options, error) {
	var opts Options
	var err error

	if opts.Start, err = parseTime(params, "start"); err != nil {
		return opts, err
	}
	if opts.End, err = parseTime(params, "end"); err != nil {
		return opts, err
	}
	if opts.Start != nil && opts.End != nil && opts.End.Before(*opts.Start) {
		return opts, errors.New("end is before start")
	}
	if opts.Limit, err = ParseLimit(params); err != nil {
		return opts, err
	}
	if opts.Favorite, err = parseBool(params, "favorite"); err != nil {
		return opts, err
	}
	if opts.Reviewed, err = parseBool(params, "reviewed"); err != nil {
		return opts, err
	}

	opts.Tags = ParseList(params, "tag")
	opts.What = ParseList(params, "what")
	opts.Where = ParseList(params, "where")

	for severity := range ParseList(params, "severity") {
		switch query.Severity(severity) {
		case query.SeverityAlert, query.SeverityDetection:
		default:
			return opts, fmt.Errorf("unknown severity: %q", severity)
		}
		if opts.Severity == nil {
			opts.Severity = query.NewSet[query.Severity]()
		}
		opts.Severity.Add(query.Severity(severity))
	}
	return opts, nil
}
