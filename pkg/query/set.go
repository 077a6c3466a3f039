/*
 * Copyright (c) 2026, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package query

import (
	"cmp"
	"slices"
)

// Set is an unordered collection of values. A nil Set and an empty Set are
// the same value.
type Set[T cmp.Ordered] map[T]struct{}

func NewSet[T cmp.Ordered](values ...T) Set[T] {
	s := make(Set[T], len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Add inserts v. It panics on a nil Set, like a map would.
func (s Set[T]) Add(v T) {
	s[v] = struct{}{}
}

func (s Set[T]) Len() int {
	return len(s)
}

// Clone returns an independent copy, or nil if s is empty.
func (s Set[T]) Clone() Set[T] {
	if len(s) == 0 {
		return nil
	}
	c := make(Set[T], len(s))
	for v := range s {
		c[v] = struct{}{}
	}
	return c
}

// Union returns a new Set holding every member of s and other.
func (s Set[T]) Union(other Set[T]) Set[T] {
	u := make(Set[T], len(s)+len(other))
	for v := range s {
		u[v] = struct{}{}
	}
	for v := range other {
		u[v] = struct{}{}
	}
	return u
}

func (s Set[T]) Equal(other Set[T]) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if !other.Has(v) {
			return false
		}
	}
	return true
}

// Sorted returns the members in ascending order.
func (s Set[T]) Sorted() []T {
	values := make([]T, 0, len(s))
	for v := range s {
		values = append(values, v)
	}
	slices.Sort(values)
	return values
}
