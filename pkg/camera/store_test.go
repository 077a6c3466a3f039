/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package camera

import (
	"slices"
	"testing"

	"github.com/dburkart/lens/pkg/query"
)

func TestDependentCameras(t *testing.T) {
	s := NewStore(
		&Camera{ID: "front", Dependencies: []string{"porch", "missing"}},
		&Camera{ID: "porch", Dependencies: []string{"yard"}},
		&Camera{ID: "yard", Dependencies: []string{"front"}},
	)

	got := s.DependentCameras("front")
	if !slices.Equal(got, []string{"front", "porch", "yard"}) {
		t.Errorf("unexpected dependent cameras: %v", got)
	}
	if got := s.DependentCameras("nope"); len(got) != 0 {
		t.Errorf("expected no cameras for an unknown id, got %v", got)
	}
}

func TestAddReplacesInPlace(t *testing.T) {
	s := NewStore(&Camera{ID: "a"}, &Camera{ID: "b"})
	s.Add(&Camera{ID: "a", Title: "Alpha"})

	if !slices.Equal(s.CameraIDs(), []string{"a", "b"}) {
		t.Errorf("unexpected order: %v", s.CameraIDs())
	}
	if c, _ := s.Camera("a"); c.Title != "Alpha" {
		t.Error("expected camera to be replaced")
	}
}

func TestQueryDefaults(t *testing.T) {
	s := NewStore(&Camera{ID: "a", What: []string{"person"}, Where: []string{"driveway"}})

	d := s.QueryDefaults("a", query.TypeEvent)
	if !d.What.Equal(query.NewSet("person")) || !d.Where.Equal(query.NewSet("driveway")) {
		t.Errorf("unexpected event defaults: %v %v", d.What, d.Where)
	}
	if d := s.QueryDefaults("a", query.TypeRecording); len(d.What) != 0 || len(d.Where) != 0 {
		t.Error("recordings should carry no defaults")
	}
}

func TestParsePreferences(t *testing.T) {
	if p, err := ParseMediaPreference(""); err != nil || p != MediaAuto {
		t.Errorf("expected empty preference to mean auto, got %s %v", p, err)
	}
	if _, err := ParseMediaPreference("holograms"); err == nil {
		t.Error("expected an error for an unknown preference")
	}
	if p, err := ParseEventsPolicy("snapshots"); err != nil || p != EventsSnapshots {
		t.Errorf("unexpected policy %s %v", p, err)
	}
}
