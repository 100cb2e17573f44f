// Package histogram holds the clusterizer's per-run accumulators: cluster
// size, total ToT, and the allocated-but-never-written position/charge
// histograms spec.md §9 documents as a carried-over artifact of the
// original (the accumulation calls exist in the source but are commented
// out — see SPEC_FULL.md §4). They are kept here, zeroed on Reset, so a
// future caller wiring the accumulation back in has a ready home for it.
package histogram

import (
	"errors"

	"pixelcluster/constants"
)

// ErrOverflow is fatal: a committed cluster's size or ToT sum exceeds the
// allocated bin range. spec.md §7 treats this as abandoning the batch.
var ErrOverflow = errors.New("histogram: bin index out of range")

// Bank is the clusterizer's histogram set. Zero value is not usable; call
// New.
type Bank struct {
	size [constants.MaxSizeBin]uint64

	// tot is the joint H_tot[size, tot] histogram (spec.md §3), flattened
	// row-major as size*MaxTotBin+totSum. Row 0 is the size-independent
	// aggregate: every Add also increments H_tot[0, totSum] alongside
	// H_tot[size, totSum] (spec.md §4.E).
	tot [constants.MaxSizeBin * constants.MaxTotBin]uint64

	// posX/posY/charge are allocated and cleared on Reset but never
	// written by Add — see the package doc comment.
	posX   [constants.MaxPosXBins]uint64
	posY   [constants.MaxPosYBins]uint64
	charge [constants.MaxChargeBins]uint64
}

// New returns a freshly zeroed Bank.
func New() *Bank {
	return &Bank{}
}

// Reset zeroes every histogram.
func (b *Bank) Reset() {
	*b = Bank{}
}

// Add folds one committed cluster's size and ToT sum into the bank.
// Returns ErrOverflow, without modifying anything, if either value is out
// of range — the caller abandons the batch on this error (spec.md §4.D).
func (b *Bank) Add(size, totSum int) error {
	if size < 0 || size >= constants.MaxSizeBin {
		return ErrOverflow
	}
	if totSum < 0 || totSum >= constants.MaxTotBin {
		return ErrOverflow
	}
	b.size[size]++
	b.tot[size*constants.MaxTotBin+totSum]++
	if size != 0 {
		b.tot[totSum]++ // size=0 row: size-independent aggregate
	}
	return nil
}

// Size returns the cluster-size histogram, indexed by cluster size.
func (b *Bank) Size() []uint64 { return b.size[:] }

// Tot returns the joint H_tot[size, tot] histogram, row-major flattened to
// length MaxSizeBin*MaxTotBin: H_tot[size, totSum] is at
// size*MaxTotBin+totSum. Row 0 is the size-independent aggregate.
func (b *Bank) Tot() []uint64 { return b.tot[:] }

// PosX/PosY/Charge expose the unwritten position/charge histograms for
// completeness; see the package doc comment for why they stay at zero.
func (b *Bank) PosX() []uint64    { return b.posX[:] }
func (b *Bank) PosY() []uint64    { return b.posY[:] }
func (b *Bank) Charge() []uint64  { return b.charge[:] }
