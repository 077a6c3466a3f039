/*
 * Copyright (c) 2023, Gideon Williams gideon@gideonw.com
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package repl

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dburkart/lens/pkg/media"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

type OutputWriter interface {
	Write(items media.Items) error
}

type CSVWriter struct {
	w io.Writer
}

type TextWriter struct {
	w   io.Writer
	now func() time.Time
}

type JSONWriter struct {
	w io.Writer
}

func NewOutputWriter(w io.Writer, t string) OutputWriter {
	switch t {
	case "csv":
		return CSVWriter{
			w,
		}
	case "json":
		return JSONWriter{
			w,
		}
	}
	return TextWriter{
		w,
		time.Now,
	}
}

var headers = []string{"start", "kind", "source", "title", "size", "labels"}

func source(i *media.Item) string {
	if i.CameraID != "" {
		return i.CameraID
	}
	return i.FolderID
}

func labels(i *media.Item) string {
	var all []string
	all = append(all, i.What...)
	all = append(all, i.Where...)
	all = append(all, i.Tags...)
	return strings.Join(all, ",")
}

func (w CSVWriter) Write(items media.Items) error {
	wtr := csv.NewWriter(w.w)
	if err := wtr.Write(headers); err != nil {
		return err
	}
	for i := range items {
		item := &items[i]
		err := wtr.Write([]string{
			item.Start.UTC().Format(time.RFC3339),
			string(item.Kind),
			source(item),
			item.Title,
			strconv.FormatInt(item.Size, 10),
			labels(item),
		})
		if err != nil {
			return err
		}
	}
	wtr.Flush()
	return wtr.Error()
}

func (w TextWriter) Write(items media.Items) error {
	if len(items) == 0 {
		_, err := io.WriteString(w.w, "No Results\n")
		return err
	}

	now := w.now()
	rows := make([][]string, 0, len(items))
	for i := range items {
		item := &items[i]
		size := ""
		if item.Size > 0 {
			size = humanize.Bytes(uint64(item.Size))
		}
		rows = append(rows, []string{
			humanize.RelTime(item.Start, now, "ago", "from now"),
			string(item.Kind),
			source(item),
			item.Title,
			size,
			labels(item),
		})
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}

	table := tablewriter.NewWriter(w.w)
	table.Header(header...)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func (w JSONWriter) Write(items media.Items) error {
	if items == nil {
		items = media.Items{}
	}
	enc := json.NewEncoder(w.w)
	return enc.Encode(items)
}
