// SPDX-License-Identifier: MIT

// Package pairindex maps unordered mode pairs onto the dense linear layout of
// the Y and A blocks of the finite-temperature Lanczos vector.
//
// Layout (n modes, P = n(n+1)/2 slots, upper triangle row-major):
//
//	(0,0) (0,1) … (0,n-1) (1,1) (1,2) … (n-1,n-1)
//	  0     1       n-1     n    n+1        P-1
//
// The mapping is total on [0,n)², symmetric in its two arguments and a
// bijection from unordered pairs onto [0, P). It is purely combinatorial
// and stateless.
package pairindex

// Size returns the number of unordered pairs (with repetition) of n modes.
// Complexity: O(1).
func Size(n int) int {
	if n <= 0 {
		return 0
	}

	return n * (n + 1) / 2
}

// triangular returns the slot of (i,j) for 0 ≤ i ≤ j < n, or -1 when the
// pair is out of range.
func triangular(i, j, n int) int {
	if i > j {
		i, j = j, i
	}
	if i < 0 || j >= n {
		return -1
	}
	// Rows 0..i-1 hold n, n-1, …, n-i+1 slots.
	return i*n - i*(i-1)/2 + (j - i)
}

// IndexY returns the Y-block position of the unordered pair {a,b}.
// It returns -1 if either mode is outside [0,n).
func IndexY(a, b, n int) int {
	return triangular(a, b, n)
}

// IndexA returns the A-block position of the unordered pair {a,b}.
// The A block mirrors the Y block slot-for-slot, so both share the same
// triangular layout; they are kept distinct to name which block is meant.
// It returns -1 if either mode is outside [0,n).
func IndexA(a, b, n int) int {
	return triangular(a, b, n)
}

// Pair inverts IndexY/IndexA: it returns the pair (a,b) with a ≤ b stored
// at slot k. It returns (-1,-1) when k is outside [0, Size(n)).
// Complexity: O(n) row scan; callers needing every pair should iterate
// with Each instead.
func Pair(k, n int) (int, int) {
	if k < 0 || k >= Size(n) {
		return -1, -1
	}
	row := n
	for a := 0; a < n; a++ {
		if k < row {
			return a, a + k
		}
		k -= row
		row--
	}

	return -1, -1
}

// Each calls fn for every unordered pair (a ≤ b) in slot order, passing
// the slot index alongside the modes.
// Complexity: O(n²).
func Each(n int, fn func(k, a, b int)) {
	k := 0
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			fn(k, a, b)
			k++
		}
	}
}
