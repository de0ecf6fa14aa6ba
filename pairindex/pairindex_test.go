// SPDX-License-Identifier: MIT

package pairindex_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eliheady/python-sscha/pairindex"
)

func TestSize(t *testing.T) {
	require.Equal(t, 0, pairindex.Size(0))
	require.Equal(t, 0, pairindex.Size(-3))
	require.Equal(t, 1, pairindex.Size(1))
	require.Equal(t, 3, pairindex.Size(2))
	require.Equal(t, 55, pairindex.Size(10))
}

func TestIndex_Bijection(t *testing.T) {
	for _, index := range []struct {
		name string
		fn   func(a, b, n int) int
	}{{"Y", pairindex.IndexY}, {"A", pairindex.IndexA}} {
		for n := 1; n <= 12; n++ {
			t.Run(fmt.Sprintf("%s/n=%d", index.name, n), func(t *testing.T) {
				size := pairindex.Size(n)
				seen := make([]bool, size)
				for a := 0; a < n; a++ {
					for b := 0; b < n; b++ {
						k := index.fn(a, b, n)
						require.GreaterOrEqual(t, k, 0)
						require.Less(t, k, size)
						require.Equal(t, k, index.fn(b, a, n), "symmetry (%d,%d)", a, b)
						if a <= b {
							require.False(t, seen[k], "collision at %d for (%d,%d)", k, a, b)
							seen[k] = true
						}
					}
				}
				for k, ok := range seen {
					require.True(t, ok, "gap at slot %d", k)
				}
			})
		}
	}
}

func TestIndex_OutOfRange(t *testing.T) {
	require.Equal(t, -1, pairindex.IndexY(-1, 0, 3))
	require.Equal(t, -1, pairindex.IndexY(0, 3, 3))
	require.Equal(t, -1, pairindex.IndexA(4, 1, 3))
}

func TestIndex_RowMajorUpperTriangle(t *testing.T) {
	// n = 3: (0,0)=0 (0,1)=1 (0,2)=2 (1,1)=3 (1,2)=4 (2,2)=5
	require.Equal(t, 0, pairindex.IndexY(0, 0, 3))
	require.Equal(t, 2, pairindex.IndexY(2, 0, 3))
	require.Equal(t, 3, pairindex.IndexY(1, 1, 3))
	require.Equal(t, 4, pairindex.IndexY(2, 1, 3))
	require.Equal(t, 5, pairindex.IndexY(2, 2, 3))
}

func TestPair_InvertsIndex(t *testing.T) {
	for n := 1; n <= 9; n++ {
		for k := 0; k < pairindex.Size(n); k++ {
			a, b := pairindex.Pair(k, n)
			require.LessOrEqual(t, a, b)
			require.Equal(t, k, pairindex.IndexY(a, b, n))
		}
		a, b := pairindex.Pair(pairindex.Size(n), n)
		require.Equal(t, -1, a)
		require.Equal(t, -1, b)
	}
}

func TestEach_SlotOrder(t *testing.T) {
	const n = 5
	calls := 0
	pairindex.Each(n, func(k, a, b int) {
		require.Equal(t, calls, k)
		require.Equal(t, k, pairindex.IndexA(a, b, n))
		calls++
	})
	require.Equal(t, pairindex.Size(n), calls)
}
