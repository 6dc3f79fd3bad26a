// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package xslices holds generic slice and map helpers missing from the standard slices and maps packages.
package xslices

import (
	"cmp"
	"flag"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// SortedKeys returns the keys of the map, sorted.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}

// Map returns fn applied to each element of in.
func Map[In, Out any](in []In, fn func(e In) Out) []Out {
	out := make([]Out, len(in))
	for ii, e := range in {
		out[ii] = fn(e)
	}
	return out
}

// Flag defines a command-line flag holding a comma-separated list of T, each element parsed with parserFn.
// It returns a pointer to the parsed list, which is defaultValue if the flag is not given.
func Flag[T any](name string, defaultValue []T, usage string, parserFn func(valueStr string) (T, error)) *[]T {
	return FlagSet(flag.CommandLine, name, defaultValue, usage, parserFn)
}

// FlagSet is like Flag, but defines the flag in the given flag.FlagSet.
func FlagSet[T any](set *flag.FlagSet, name string, defaultValue []T, usage string,
	parserFn func(valueStr string) (T, error)) *[]T {
	f := &listFlag[T]{values: defaultValue, parserFn: parserFn}
	set.Var(f, name, usage)
	return &f.values
}

// listFlag implements flag.Value for a list of T.
type listFlag[T any] struct {
	values   []T
	parserFn func(valueStr string) (T, error)
}

func (f *listFlag[T]) String() string {
	if f == nil || len(f.values) == 0 {
		return ""
	}
	return strings.Join(Map(f.values, func(e T) string { return fmt.Sprint(e) }), ",")
}

func (f *listFlag[T]) Set(listStr string) error {
	f.values = make([]T, 0)
	if listStr == "" {
		return nil
	}
	for _, part := range strings.Split(listStr, ",") {
		value, err := f.parserFn(strings.TrimSpace(part))
		if err != nil {
			return err
		}
		f.values = append(f.values, value)
	}
	return nil
}
