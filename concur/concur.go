// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package concur implements the §5 fork-join scheduling model: independent
// loops over target panels, preconditioner blocks or interaction-list rows
// are split into fixed, contiguous, ordered chunks (one per worker) so that
// a run at a fixed thread count always reduces in the same order — no
// worker ever writes through another's slice range, so no lock is needed
// in the hot path.
package concur

import (
	"runtime"
	"sync"
)

// Workers returns the worker count to split n independent items across:
// GOMAXPROCS, but never more than n and never less than 1.
func Workers(n int) int {
	w := runtime.GOMAXPROCS(0)
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Range runs fn(lo, hi) for each of Workers(n) contiguous, non-overlapping
// chunks covering [0, n), blocking until every chunk has returned
// (fork-join barrier, §5). Chunk boundaries are a pure function of n and
// GOMAXPROCS, so the partition — and therefore the reduction order within
// each chunk — is identical run-to-run at a fixed thread count.
func Range(n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	w := Workers(n)
	if w == 1 {
		fn(0, n)
		return
	}
	chunk := (n + w - 1) / w
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
