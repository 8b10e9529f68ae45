// Package view derives read-side projections from record lists. Every
// function is pure: inputs are never mutated and results are fresh
// slices, so repeated calls over the same records give the same answer.
package view

import (
	"sort"
	"strings"
)

// FilterByText keeps records whose candidate fields contain the query,
// case-insensitively. A blank query keeps everything.
func FilterByText[T any](items []T, query string, fields func(T) []string) []T {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]T, 0, len(items))
	if query == "" {
		return append(out, items...)
	}
	for _, item := range items {
		for _, field := range fields(item) {
			if strings.Contains(strings.ToLower(field), query) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// Where keeps records the predicate accepts.
func Where[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// SortedBy returns a stably sorted copy. Records that compare equal keep
// their stored order.
func SortedBy[T any](items []T, less func(a, b T) bool) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

// Partition splits records into members and the rest, preserving order
// within each side.
func Partition[T any](items []T, member func(T) bool) (in []T, out []T) {
	in = make([]T, 0, len(items))
	out = make([]T, 0, len(items))
	for _, item := range items {
		if member(item) {
			in = append(in, item)
		} else {
			out = append(out, item)
		}
	}
	return in, out
}

// CountWhere counts records the predicate accepts.
func CountWhere[T any](items []T, keep func(T) bool) int {
	n := 0
	for _, item := range items {
		if keep(item) {
			n++
		}
	}
	return n
}
