/*
 * Copyright (c) 2022, Dana Burkart <dana.burkart@gmail.com>
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package builder

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var numberFormats = [...]string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC822,
	time.RFC822Z,
	time.DateTime,
	time.DateOnly,
	"2006/01/02",
	"02/01/2006",
}

var letterFormats = [...]string{
	"Jan 02, 2006",
	time.RFC850,
	time.UnixDate,
	time.RFC1123,
	time.RFC1123Z,
}

// ParseTime reads an absolute timestamp in one of several common layouts,
// "now", or an offset from now such as "-90m" or "+1h".
func ParseTime(some string, now time.Time) (time.Time, error) {
	some = strings.TrimSpace(some)
	if strings.EqualFold(some, "now") {
		return now, nil
	}

	first, _ := utf8.DecodeRuneInString(some)
	formats := letterFormats[:]
	switch {
	case first == '-' || first == '+':
		d, err := time.ParseDuration(some)
		if err != nil {
			return time.Time{}, fmt.Errorf("specified offset '%s' is not a duration", some)
		}
		return now.Add(d), nil
	case unicode.IsDigit(first):
		formats = numberFormats[:]
	}

	for _, layout := range formats {
		if tm, err := time.Parse(layout, some); err == nil {
			return tm, nil
		}
	}
	return time.Time{}, fmt.Errorf("specified time '%s' did not match a known timestamp", some)
}
