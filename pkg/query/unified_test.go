/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package query

import (
	"strings"
	"testing"
	"time"

	"github.com/andreyvit/diff"
)

func date(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func eventNode(start, end *time.Time) *MediaQuery {
	return &MediaQuery{
		Type:      TypeEvent,
		CameraIDs: NewSet("camera1"),
		Start:     start,
		End:       end,
		What:      NewSet("person", "car"),
		HasClip:   Bool(true),
	}
}

func folderNode() *FolderQuery {
	return &FolderQuery{
		Folder: &FolderConfig{ID: "media", Type: "local", Root: "/srv/media"},
		Path: []PathComponent{
			{ID: "/srv/media"},
			{ID: "2024", Hints: map[string]string{"match": "*.mp4"}},
		},
	}
}

func TestCoverage(t *testing.T) {
	tt := []struct {
		test   string
		ours   *MediaQuery
		theirs *MediaQuery
		want   bool
	}{
		{
			"Wider bounded range covers narrower",
			eventNode(Time(date(1)), Time(date(31))),
			eventNode(Time(date(10)), Time(date(20))),
			true,
		},
		{
			"Narrower range does not cover wider",
			eventNode(Time(date(10)), Time(date(20))),
			eventNode(Time(date(1)), Time(date(31))),
			false,
		},
		{
			"Identical range covers",
			eventNode(Time(date(10)), Time(date(20))),
			eventNode(Time(date(10)), Time(date(20))),
			true,
		},
		{
			"Unbounded covers bounded",
			eventNode(nil, nil),
			eventNode(Time(date(10)), Time(date(20))),
			true,
		},
		{
			"Bounded start does not cover unbounded start",
			eventNode(Time(date(1)), nil),
			eventNode(nil, Time(date(20))),
			false,
		},
		{
			"Bounded end does not cover unbounded end",
			eventNode(nil, Time(date(31))),
			eventNode(Time(date(10)), nil),
			false,
		},
		{
			"Unbounded covers unbounded",
			eventNode(nil, nil),
			eventNode(nil, nil),
			true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.test, func(t *testing.T) {
			got := New(tc.ours).IsSupersetOf(New(tc.theirs))
			if got != tc.want {
				t.Errorf("IsSupersetOf = %t, want %t", got, tc.want)
			}
		})
	}
}

func TestCoverageRequiresOtherFieldsEqual(t *testing.T) {
	ours := eventNode(nil, nil)
	theirs := eventNode(Time(date(10)), Time(date(20)))
	theirs.HasClip = nil
	theirs.HasSnapshot = Bool(true)

	if New(ours).IsSupersetOf(New(theirs)) {
		t.Error("a clips node should not cover a snapshots node")
	}
}

func TestSupersetAcrossNodes(t *testing.T) {
	ours := New(eventNode(nil, nil), folderNode())
	theirs := New(folderNode(), eventNode(Time(date(3)), Time(date(4))))

	if !ours.IsSupersetOf(theirs) {
		t.Error("expected superset regardless of node order")
	}

	moved := folderNode()
	moved.Path[1].ID = "2023"
	if ours.IsSupersetOf(New(moved)) {
		t.Error("folder nodes should require exact equality")
	}
	if !ours.IsSupersetOf(New()) {
		t.Error("every query is a superset of the empty query")
	}
}

func TestSetInsensitiveEquality(t *testing.T) {
	a := eventNode(nil, nil)
	b := eventNode(nil, nil)
	b.What = NewSet("car", "person")

	if !a.Equal(b) {
		t.Error("expected nodes with the same what set to be equal")
	}

	b.What.Add("dog")
	if a.Equal(b) {
		t.Error("expected nodes with different what sets to differ")
	}
}

func TestEqualIsOrderSensitive(t *testing.T) {
	a := New(eventNode(nil, nil), folderNode())
	b := New(folderNode(), eventNode(nil, nil))

	if a.Equal(b) {
		t.Error("expected node order to matter for equality")
	}
	if !a.Equal(New(eventNode(nil, nil), folderNode())) {
		t.Error("expected structurally identical queries to be equal")
	}
}

func TestCloneIsDeep(t *testing.T) {
	q := New(eventNode(Time(date(1)), nil), folderNode())
	c := q.Clone()

	if !q.Equal(c) {
		t.Fatal("clone should equal the original")
	}

	c.MediaQueries(MediaQueryFilter{})[0].CameraIDs.Add("camera2")
	*c.MediaQueries(MediaQueryFilter{})[0].Start = date(5)
	c.FolderQueries("")[0].Path[1].Hints["match"] = "*.jpg"

	if !q.MediaQueries(MediaQueryFilter{})[0].Start.Equal(date(1)) {
		t.Error("start time shared between clone and original")
	}
	if q.MediaQueries(MediaQueryFilter{})[0].CameraIDs.Has("camera2") {
		t.Error("camera set shared between clone and original")
	}
	if q.FolderQueries("")[0].Path[1].Hints["match"] != "*.mp4" {
		t.Error("path hints shared between clone and original")
	}
}

func TestAccessors(t *testing.T) {
	recordings := &MediaQuery{Type: TypeRecording, CameraIDs: NewSet("camera2", "camera3")}
	segments := &MediaQuery{Type: TypeRecordingSegments, CameraIDs: NewSet("camera4")}
	anyEvent := &MediaQuery{Type: TypeEvent, CameraIDs: NewSet("camera5")}
	q := New(eventNode(nil, nil), recordings, folderNode(), segments, anyEvent)

	if got := len(q.MediaQueries(MediaQueryFilter{})); got != 4 {
		t.Errorf("expected 4 media queries, got %d", got)
	}
	if got := q.MediaQueries(MediaQueryFilter{CameraID: "camera3"}); len(got) != 1 || got[0] != recordings {
		t.Errorf("expected camera filter to match by membership, got %v", got)
	}
	if got := len(q.MediaQueries(MediaQueryFilter{CameraID: "camera2", Type: TypeEvent})); got != 0 {
		t.Errorf("expected no event queries for camera2, got %d", got)
	}
	if got := len(q.FolderQueries("media")); got != 1 {
		t.Errorf("expected 1 folder query, got %d", got)
	}
	if got := len(q.FolderQueries("other")); got != 0 {
		t.Errorf("expected no folder queries for unknown folder, got %d", got)
	}
	if got := q.NonMediaQueries(); len(got) != 1 {
		t.Errorf("expected 1 non-media query, got %d", len(got))
	}

	ids := q.AllCameraIDs()
	if !ids.Equal(NewSet("camera1", "camera2", "camera3", "camera4", "camera5")) {
		t.Errorf("unexpected camera ids: %v", ids.Sorted())
	}

	kinds := q.AllMediaTypes()
	if !kinds.Equal(NewSet(KindClips, KindRecordings)) {
		t.Errorf("unexpected media types: %v", kinds.Sorted())
	}
}

func TestEmptyAccessorsAreNotNil(t *testing.T) {
	q := New()
	if q.MediaQueries(MediaQueryFilter{}) == nil || q.FolderQueries("") == nil || q.NonMediaQueries() == nil {
		t.Error("expected empty collections rather than nil")
	}
}

func TestDump(t *testing.T) {
	q := New(eventNode(Time(date(1)), Time(date(31))), folderNode())
	q.MediaQueries(MediaQueryFilter{})[0].Limit = 100

	expected := strings.Join([]string{
		"UnifiedQuery[2]",
		"    MediaQuery[event] cameras(camera1) start(2024-01-01T00:00:00Z) end(2024-01-31T00:00:00Z) limit(100) what(car,person) hasClip(true)",
		"    FolderQuery[media] path(/srv/media/2024)",
		"",
	}, "\n")

	if actual := q.String(); actual != expected {
		t.Errorf("dump mismatch:\n%v", diff.LineDiff(expected, actual))
	}
}

func TestValidate(t *testing.T) {
	if err := (&MediaQuery{Type: TypeEvent}).Validate(); err == nil {
		t.Error("expected an error for an empty camera set")
	}
	if err := (&MediaQuery{Type: TypeReview, CameraIDs: NewSet("a"), HasClip: Bool(true)}).Validate(); err == nil {
		t.Error("expected an error for a clip flag on a review query")
	}
	if err := (&FolderQuery{Folder: &FolderConfig{ID: "f"}}).Validate(); err == nil {
		t.Error("expected an error for an empty path")
	}
	if err := folderNode().Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
