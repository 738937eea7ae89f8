// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package concur

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_range_covers_every_index_exactly_once(tst *testing.T) {

	chk.PrintTitle("range_covers_every_index_exactly_once")

	n := 97
	seen := make([]int, n)
	Range(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			seen[i]++ // owner-computes: only this worker ever touches index i
		}
	})
	for i, c := range seen {
		if c != 1 {
			tst.Fatalf("index %d touched %d times, want 1", i, c)
		}
	}
}

func Test_range_deterministic_chunking(tst *testing.T) {

	chk.PrintTitle("range_deterministic_chunking")

	n := 33
	a := make([]int, n)
	b := make([]int, n)
	Range(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			a[i] = i // owner-computes: writes only fall in [lo,hi)
		}
	})
	Range(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			b[i] = i
		}
	})
	for i := range a {
		if a[i] != b[i] {
			tst.Fatalf("index %d: %d vs %d", i, a[i], b[i])
		}
	}
}
