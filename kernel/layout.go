// SPDX-License-Identifier: MIT

package kernel

import (
	"fmt"

	"github.com/eliheady/python-sscha/pairindex"
)

// Layout describes the finite-temperature Lanczos vector ψ:
//
//	ψ[0 : N)          R block, one entry per mode
//	ψ[N : N+P)        Y block, one entry per unordered pair (pairindex.IndexY)
//	ψ[StartA : EndA)  A block, one entry per unordered pair (pairindex.IndexA)
//
// with N = NModes and P = N(N+1)/2. Entries outside the three blocks are
// neither read nor written.
type Layout struct {
	NModes int
	StartA int
	EndA   int
}

// NewLayout returns the packed layout with the A block right after Y.
func NewLayout(nModes int) Layout {
	p := pairindex.Size(nModes)

	return Layout{NModes: nModes, StartA: nModes + p, EndA: nModes + 2*p}
}

// Pairs returns P, the length of the Y and A blocks.
func (l Layout) Pairs() int { return pairindex.Size(l.NModes) }

// StartY returns the offset of the Y block.
func (l Layout) StartY() int { return l.NModes }

// Len returns the minimal ψ length holding all three blocks.
func (l Layout) Len() int { return l.EndA }

// Validate checks the block boundaries against a ψ of the given length.
// Errors: ErrBadLayout.
func (l Layout) Validate(length int) error {
	p := l.Pairs()
	switch {
	case l.NModes <= 0:
		return fmt.Errorf("layout: %d modes: %w", l.NModes, ErrBadLayout)
	case l.StartA > l.EndA:
		return fmt.Errorf("layout: start_A %d > end_A %d: %w", l.StartA, l.EndA, ErrBadLayout)
	case l.EndA-l.StartA != p:
		return fmt.Errorf("layout: A block holds %d entries, want %d: %w", l.EndA-l.StartA, p, ErrBadLayout)
	case l.StartA < l.NModes+p:
		return fmt.Errorf("layout: A block at %d overlaps R/Y blocks ending at %d: %w", l.StartA, l.NModes+p, ErrBadLayout)
	case l.EndA > length:
		return fmt.Errorf("layout: end_A %d beyond buffer of %d: %w", l.EndA, length, ErrBadLayout)
	}

	return nil
}
