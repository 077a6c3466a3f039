/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package engine

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dburkart/lens/pkg/media"
	"github.com/dburkart/lens/pkg/query"
	"github.com/dburkart/lens/pkg/runner"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var ErrUnknownFolder = errors.New("unknown folder")

// Hints understood on folder path components.
const (
	// HintMatch is a glob applied to entry names by the last component
	HintMatch = "match"
	// HintCondition is "key=value"; the component is skipped when a
	// condition state is given and disagrees
	HintCondition = "condition"
)

// FolderEngine lists folders on the local filesystem. The first path
// component stands for the folder root; each following component descends
// into a subdirectory.
type FolderEngine struct {
	log     zerolog.Logger
	folders []*query.FolderConfig
	lookup  map[string]*query.FolderConfig
	lock    sync.RWMutex
}

func NewFolderEngine(log zerolog.Logger, folders ...*query.FolderConfig) *FolderEngine {
	e := &FolderEngine{log: log, lookup: make(map[string]*query.FolderConfig)}
	for _, f := range folders {
		e.Add(f)
	}
	return e
}

func (e *FolderEngine) Add(f *query.FolderConfig) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if _, exists := e.lookup[f.ID]; !exists {
		e.folders = append(e.folders, f)
	} else {
		for i := range e.folders {
			if e.folders[i].ID == f.ID {
				e.folders[i] = f
			}
		}
	}
	e.lookup[f.ID] = f
}

func (e *FolderEngine) Folder(id string) (*query.FolderConfig, bool) {
	e.lock.RLock()
	defer e.lock.RUnlock()

	f, ok := e.lookup[id]
	return f, ok
}

// Folders returns the configured folders in configuration order.
func (e *FolderEngine) Folders() []*query.FolderConfig {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return slices.Clone(e.folders)
}

// DefaultQueryParameters returns the query for the folder's root followed by
// its configured default path.
func (e *FolderEngine) DefaultQueryParameters(folder *query.FolderConfig) *query.FolderQuery {
	if folder == nil || folder.Root == "" {
		return nil
	}

	path := []query.PathComponent{{ID: folder.Root, Title: folder.Title}}
	for _, p := range folder.DefaultPath {
		path = append(path, query.PathComponent{ID: p})
	}
	return &query.FolderQuery{Folder: folder, Path: path}
}

func (e *FolderEngine) ExpandFolder(ctx context.Context, node *query.FolderQuery, conditions runner.ConditionState, _ runner.ExecuteOptions) (media.Items, error) {
	folder, err := e.registered(node)
	if err != nil {
		return nil, err
	}

	dir, match, err := resolve(folder, node.Path, conditions)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list folder %s", folder.ID)
	}

	var dirs, files media.Items
	for _, entry := range entries {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if match != "" {
			if ok, _ := filepath.Match(match, entry.Name()); !ok {
				continue
			}
		}

		info, err := entry.Info()
		if err != nil {
			// The entry went away while listing
			continue
		}

		full := filepath.Join(dir, entry.Name())
		rel, _ := filepath.Rel(folder.Root, full)
		item := media.Item{
			ID:       folder.ID + ":" + filepath.ToSlash(rel),
			FolderID: folder.ID,
			Title:    entry.Name(),
			Path:     full,
			Start:    info.ModTime().UTC(),
		}
		if entry.IsDir() {
			item.Kind = media.KindFolder
			dirs = append(dirs, item)
		} else {
			item.Kind = media.KindFile
			item.Size = info.Size()
			files = append(files, item)
		}
	}

	// Subfolders by name, then files newest first
	slices.SortFunc(dirs, func(a, b media.Item) int {
		return strings.Compare(a.Title, b.Title)
	})
	files.SortNewestFirst()

	results := append(dirs, files...)
	if node.Limit > 0 && len(results) > node.Limit {
		results = results[:node.Limit]
	}
	if results == nil {
		results = media.Items{}
	}

	e.log.Trace().
		Str("folder", folder.ID).
		Str("dir", dir).
		Int("results", len(results)).
		Msg("expanded folder")

	return results, nil
}

// AreResultsFresh reports whether the listed directory is unchanged since
// timestamp.
func (e *FolderEngine) AreResultsFresh(timestamp time.Time, node *query.FolderQuery) bool {
	folder, err := e.registered(node)
	if err != nil {
		return false
	}
	dir, _, err := resolve(folder, node.Path, nil)
	if err != nil {
		return false
	}
	info, err := os.Stat(dir)
	if err != nil {
		return false
	}
	return !info.ModTime().After(timestamp)
}

func (e *FolderEngine) registered(node *query.FolderQuery) (*query.FolderConfig, error) {
	if err := node.Validate(); err != nil {
		return nil, err
	}
	folder, ok := e.Folder(node.FolderID())
	if !ok {
		return nil, errors.Wrapf(ErrUnknownFolder, "folder %q", node.FolderID())
	}
	return folder, nil
}

// resolve walks the path below the folder root, returning the directory to
// list and the glob of the last applicable component.
func resolve(folder *query.FolderConfig, path []query.PathComponent, conditions runner.ConditionState) (string, string, error) {
	dir := filepath.Clean(folder.Root)
	match := path[0].Hints[HintMatch]

	for _, component := range path[1:] {
		if cond, ok := component.Hints[HintCondition]; ok && conditions != nil {
			key, value, _ := strings.Cut(cond, "=")
			if conditions[key] != value {
				continue
			}
		}

		next := filepath.Join(dir, component.ID)
		if next != dir && !strings.HasPrefix(next, dir+string(filepath.Separator)) {
			return "", "", errors.Errorf("path component %q escapes folder %s", component.ID, folder.ID)
		}
		dir = next
		match = component.Hints[HintMatch]
	}
	return dir, match, nil
}
