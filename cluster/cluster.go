// Package cluster implements the flood-fill grouping over the grid's
// (column, row, relative-BCID) space: for every still-occupied cell
// found during a deterministic seed scan, grow an 8-direction connected
// component bounded by the configured spatial/temporal window, then
// decide whether to commit it.
//
// The flood-fill is naturally recursive (see the original pyBAR
// Clusterizer::searchNextHits), but a misconfigured MaxClusterHits
// combined with a long reachable chain must never grow the Go call
// stack without bound. Build keeps an explicit, reusable stack of
// frames instead, each resumable at the exact (BCID offset, dx, dy,
// direction) position it left off at — equivalent to the recursive
// walk, just iterative.
package cluster

import (
	"pixelcluster/constants"
	"pixelcluster/diag"
	"pixelcluster/grid"
	"pixelcluster/hit"
)

// Config is the subset of engine tunables the flood-fill needs.
type Config struct {
	Dx, Dy           int
	DbCID            int
	MinClusterHits   int
	MaxClusterHits   int
	MaxClusterHitTot uint16
	MaxHitTot        uint16
}

// Result is one raw connected component, whether or not it is ultimately
// committed. HitIndices lists every hit consumed while building it, in
// consumption order, so the caller can stamp per-hit cluster size even
// for a discarded cluster.
type Result struct {
	HitIndices []uint32
	Size       int
	TotSum     int
	ChargeSum  float64
	XMoment    float64 // charge-weighted column moment, physical units
	YMoment    float64 // charge-weighted row moment, physical units
	SeedCol    int      // 0-based
	SeedRow    int      // 0-based
	SeedHitIdx uint32
	maxTotSeen int
	Abort      bool
	Committed  bool
	ClusterID  uint32
}

// direction is the compass order spec.md §4.C fixes: U, UR, R, DR, D, DL,
// L, UL. colDelta/rowDelta are expressed in units of the dx/dy step.
func direction(dirIdx, dx, dy int) (colDelta, rowDelta int) {
	switch dirIdx {
	case 0: // U
		return 0, dy
	case 1: // UR
		return dx, dy
	case 2: // R
		return dx, 0
	case 3: // DR
		return dx, -dy
	case 4: // D
		return 0, -dy
	case 5: // DL
		return -dx, -dy
	case 6: // L
		return -dx, 0
	default: // UL
		return -dx, dy
	}
}

type frame struct {
	col, row, bcid int
	consumed       bool
	resumePos      int
	latch          [8]bool
}

// Builder owns the reusable flood-fill scratch stack so repeated
// BuildEvent calls allocate nothing beyond growing the stack once to its
// high-water mark.
type Builder struct {
	stack []frame
}

// NewBuilder returns a Builder with its scratch stack pre-sized to
// DefaultMaxClusterHits+1. A flood-fill that reaches more cells than that
// grows the stack (on the heap, never the Go call stack).
func NewBuilder() *Builder {
	return &Builder{stack: make([]frame, 0, constants.DefaultMaxClusterHits+1)}
}

// BuildEvent scans the grid's bounding box for seeds in the order spec.md
// §4.C fixes — BCID outermost, then column, then row, inclusive bounds —
// and grows a cluster from every cell still occupied when its turn comes.
// nextClusterID is the event's current cluster-id counter; BuildEvent
// marks each cluster that is neither aborted nor undersized as Committed
// and gives it the next id from that counter, in scan order. Writing the
// committed clusters to the output buffers and histograms is left to the
// caller, which owns them and must be able to abandon the batch on
// overflow.
func (b *Builder) BuildEvent(g *grid.Grid, minCol, maxCol, minRow, maxRow, bcidFirst, bcidLast int, cfg Config, nextClusterID uint32, annotations []hit.Annotation) []Result {
	var results []Result

	for bcid := bcidFirst; bcid <= bcidLast; bcid++ {
		for col := minCol; col <= maxCol; col++ {
			for row := minRow; row <= maxRow; row++ {
				if g.Exists(col, row, bcid) {
					res := b.grow(g, col, row, bcid, bcidLast, cfg, nextClusterID, annotations)
					if res.Abort {
						// silently dropped: hits already consumed from the grid
					} else if res.Size < cfg.MinClusterHits {
						diag.Warnf("clusterize: cluster size too small (%d < %d)", res.Size, cfg.MinClusterHits)
					} else {
						res.Committed = true
						res.ClusterID = nextClusterID
						nextClusterID++
					}
					results = append(results, res)
				}
				if g.LiveHits() == 0 {
					return results
				}
			}
		}
	}
	return results
}

// grow performs the bounded flood-fill from one seed cell, returning the
// raw (possibly aborted) Result. clusterRelBcid is fixed to the seed's
// own BCID for the life of this call, per spec.md §4.C: the temporal
// window is forward-only from the seed, not from each cell visited.
func (b *Builder) grow(g *grid.Grid, seedCol, seedRow, seedBcid, bcidLast int, cfg Config, clusterID uint32, annotations []hit.Annotation) Result {
	var res Result
	clusterRelBcid := seedBcid

	b.stack = b.stack[:0]
	b.stack = append(b.stack, frame{col: seedCol, row: seedRow, bcid: seedBcid})

	maxDb := cfg.DbCID + 1
	total := maxDb * cfg.Dx * cfg.Dy * 8

	for len(b.stack) > 0 {
		f := &b.stack[len(b.stack)-1]

		if !f.consumed {
			b.consume(g, f.col, f.row, f.bcid, &res, clusterID, cfg, annotations)
			f.consumed = true
			if g.LiveHits() == 0 {
				b.stack = b.stack[:len(b.stack)-1]
				continue
			}
		}

		advanced := false
		for pos := f.resumePos; pos < total; pos++ {
			dirIdx := pos % 8
			t := pos / 8
			dyIdx := t%cfg.Dy + 1
			t /= cfg.Dy
			dxIdx := t%cfg.Dx + 1
			dbIdx := t / cfg.Dx

			iDbCID := clusterRelBcid + dbIdx
			if iDbCID > bcidLast {
				break
			}
			if f.latch[dirIdx] {
				continue
			}
			colDelta, rowDelta := direction(dirIdx, dxIdx, dyIdx)
			nc, nr := f.col+colDelta, f.row+rowDelta
			if g.Exists(nc, nr, iDbCID) {
				f.latch[dirIdx] = true
				f.resumePos = pos + 1
				b.stack = append(b.stack, frame{col: nc, row: nr, bcid: iDbCID})
				advanced = true
				break
			}
		}

		if !advanced {
			b.stack = b.stack[:len(b.stack)-1]
		}
	}

	return res
}

// consume folds one cell into the in-progress Result, enforces the size
// and per-hit ToT caps, tracks the seed candidate, and clears the cell
// from the grid. Mirrors Clusterizer::searchNextHits's per-cell body:
// every reachable cell is consumed and counted, even past the cap — the
// cluster keeps draining so the grid invariant holds, it just never
// commits (spec.md §4.C, §9).
func (b *Builder) consume(g *grid.Grid, col, row, bcid int, res *Result, clusterID uint32, cfg Config, annotations []hit.Annotation) {
	tot, hitIdx, _ := g.Take(col, row, bcid)

	res.Size++
	res.HitIndices = append(res.HitIndices, hitIdx)
	res.TotSum += int(tot)

	charge := g.Charge(col, row, int(tot))
	res.ChargeSum += charge
	res.XMoment += (float64(col) + 0.5) * constants.PixelSizeXum * charge
	res.YMoment += (float64(row) + 0.5) * constants.PixelSizeYum * charge

	if tot >= int16(res.maxTotSeen) && tot <= int16(cfg.MaxHitTot) {
		res.maxTotSeen = int(tot)
		res.SeedCol = col
		res.SeedRow = row
		res.SeedHitIdx = hitIdx
	}

	if annotations != nil && int(hitIdx) < len(annotations) {
		annotations[hitIdx].ClusterID = clusterID
	}

	if tot > int16(cfg.MaxClusterHitTot) {
		res.Abort = true
	}
	if res.Size > cfg.MaxClusterHits {
		res.Abort = true
	}
}
