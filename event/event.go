// Package event holds the per-event state the stream driver carves out of
// the hit stream: bounding box, OR-reduced status, and the live population
// count (delegated to the grid, which is the single source of truth for
// occupancy).
package event

import (
	"pixelcluster/constants"
	"pixelcluster/diag"
	"pixelcluster/grid"
	"pixelcluster/hit"
)

// Accumulator tracks the currently-open event. One instance is reused
// across events; Reset carves out a fresh window at every boundary.
type Accumulator struct {
	EventNumber uint64
	EventStatus uint32
	ClusterID   uint32

	MinCol, MaxCol     int
	MinRow, MaxRow     int
	BCIDFirst, BCIDLast int
}

// New returns an Accumulator in its just-reset state.
func New() *Accumulator {
	a := &Accumulator{}
	a.Reset()
	return a
}

// Reset zeroes the running state and re-inverts the bounding box so the
// first InsertHit of the next event establishes it correctly.
func (a *Accumulator) Reset() {
	a.EventNumber = 0
	a.EventStatus = 0
	a.ClusterID = 0
	a.MinCol = constants.Cols - 1
	a.MaxCol = 0
	a.MinRow = constants.Rows - 1
	a.MaxRow = 0
	a.BCIDFirst = -1
	a.BCIDLast = -1
}

// InsertHit folds one hit into the open event: ORs its status into the
// running event status unconditionally, then — unless its ToT exceeds
// maxHitTot, in which case the hit is silently dropped (spec.md §7) —
// expands the bounding box and inserts it into the grid. A duplicate cell
// is a warning, not a drop: the existing occupant is left in place.
//
// When annotations is non-nil, the hit's pass-through fields are copied
// into annotations[hitIdx] with ClusterSize/NClustersInEvent marked
// not-yet-stamped, regardless of whether the grid insert succeeded.
func (a *Accumulator) InsertHit(g *grid.Grid, rec hit.Record, hitIdx uint32, maxHitTot uint16, annotations []hit.Annotation) {
	a.EventStatus |= rec.EventStatus

	if rec.Tot > maxHitTot {
		return
	}

	col := int(rec.Column) - 1
	row := int(rec.Row) - 1
	bcid := int(rec.RelativeBCID)

	if g.LiveHits() == 0 {
		a.BCIDFirst = bcid
	}
	if bcid > a.BCIDLast {
		a.BCIDLast = bcid
	}
	if col > a.MaxCol {
		a.MaxCol = col
	}
	if col < a.MinCol {
		a.MinCol = col
	}
	if row < a.MinRow {
		a.MinRow = row
	}
	if row > a.MaxRow {
		a.MaxRow = row
	}

	if err := g.Insert(col, row, bcid, int16(rec.Tot), hitIdx); err != nil {
		diag.Warnf("event %d: duplicate hit at col/row/bcid=%d/%d/%d, ignored", rec.EventNumber, col, row, bcid)
	}

	if annotations != nil {
		annotations[hitIdx] = hit.Annotation{
			EventNumber:   rec.EventNumber,
			TriggerNumber: rec.TriggerNumber,
			RelativeBCID:  rec.RelativeBCID,
			LVLID:         rec.LVLID,
			Column:        rec.Column,
			Row:           rec.Row,
			Tot:           rec.Tot,
			BCID:          rec.BCID,
			TDC:           rec.TDC,
			TriggerStatus: rec.TriggerStatus,
			ServiceRecord: rec.ServiceRecord,
			EventStatus:   rec.EventStatus,
			IsSeed:        false,
			ClusterSize:      -1,
			NClustersInEvent: -1,
			Stamped:          false,
		}
	}
}
