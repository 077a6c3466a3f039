/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package query

import (
	"fmt"
	"strings"
	"time"
)

// String dumps the query one node per line with a stable field order, so
// that dumps can be compared textually.
func (q *UnifiedQuery) String() string {
	if q == nil {
		return "UnifiedQuery[nil]\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "UnifiedQuery[%d]\n", len(q.nodes))
	for _, n := range q.nodes {
		b.WriteString("    ")
		b.WriteString(DumpNode(n))
		b.WriteString("\n")
	}
	return b.String()
}

func DumpNode(n Node) string {
	switch t := n.(type) {
	case *MediaQuery:
		return dumpMedia(t)
	case *FolderQuery:
		return dumpFolder(t)
	}
	return fmt.Sprintf("%T", n)
}

func dumpMedia(m *MediaQuery) string {
	fields := []string{"cameras(" + strings.Join(m.CameraIDs.Sorted(), ",") + ")"}

	if m.Start != nil {
		fields = append(fields, "start("+m.Start.UTC().Format(time.RFC3339)+")")
	}
	if m.End != nil {
		fields = append(fields, "end("+m.End.UTC().Format(time.RFC3339)+")")
	}
	if m.Limit > 0 {
		fields = append(fields, fmt.Sprintf("limit(%d)", m.Limit))
	}
	if m.Favorite != nil {
		fields = append(fields, fmt.Sprintf("favorite(%t)", *m.Favorite))
	}
	if m.Reviewed != nil {
		fields = append(fields, fmt.Sprintf("reviewed(%t)", *m.Reviewed))
	}
	if len(m.Tags) > 0 {
		fields = append(fields, "tags("+strings.Join(m.Tags.Sorted(), ",")+")")
	}
	if len(m.What) > 0 {
		fields = append(fields, "what("+strings.Join(m.What.Sorted(), ",")+")")
	}
	if len(m.Where) > 0 {
		fields = append(fields, "where("+strings.Join(m.Where.Sorted(), ",")+")")
	}
	if len(m.Severity) > 0 {
		var severities []string
		for _, s := range m.Severity.Sorted() {
			severities = append(severities, string(s))
		}
		fields = append(fields, "severity("+strings.Join(severities, ",")+")")
	}
	if m.HasClip != nil {
		fields = append(fields, fmt.Sprintf("hasClip(%t)", *m.HasClip))
	}
	if m.HasSnapshot != nil {
		fields = append(fields, fmt.Sprintf("hasSnapshot(%t)", *m.HasSnapshot))
	}

	return "MediaQuery[" + string(m.Type) + "] " + strings.Join(fields, " ")
}

func dumpFolder(f *FolderQuery) string {
	var ids []string
	for _, p := range f.Path {
		ids = append(ids, p.ID)
	}

	out := "FolderQuery[" + f.FolderID() + "] path(" + strings.Join(ids, "/") + ")"
	if f.Limit > 0 {
		out += fmt.Sprintf(" limit(%d)", f.Limit)
	}
	return out
}
