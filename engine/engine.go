// Package engine wires grid, event, cluster, histogram, and emit into the
// clusterizer's single public entry point: AddHits. One Engine processes
// one readout stream; it keeps no goroutines, locks, or shared state, so
// independent streams each get their own Engine and run in parallel
// without interaction.
package engine

import (
	"errors"
	"fmt"
	"io"

	"pixelcluster/cluster"
	"pixelcluster/constants"
	"pixelcluster/diag"
	"pixelcluster/emit"
	"pixelcluster/event"
	"pixelcluster/grid"
	"pixelcluster/hit"
	"pixelcluster/histogram"
)

// ErrClusterHitInfoOverflow is fatal: a batch carried more hits than the
// caller's ClusterHitAnnotation buffer can index.
var ErrClusterHitInfoOverflow = errors.New("engine: hit index exceeds annotation buffer capacity")

// Config holds the clusterizer's tunables. Every setter silently clamps
// out-of-range input rather than returning an error — spec.md §7 treats
// misconfiguration here as a non-fatal condition, unlike the buffer and
// histogram overflows AddHits can return.
type Config struct {
	Dx, Dy           int
	DbCID            int
	MinClusterHits   int
	MaxClusterHits   int
	MaxClusterHitTot uint16
	MaxHitTot        uint16
}

// DefaultConfig mirrors the original Clusterizer's constructor defaults.
func DefaultConfig() Config {
	return Config{
		Dx:               constants.DefaultDx,
		Dy:               constants.DefaultDy,
		DbCID:            constants.DefaultDbCID,
		MinClusterHits:   constants.DefaultMinClusterHits,
		MaxClusterHits:   constants.DefaultMaxClusterHits,
		MaxClusterHitTot: constants.DefaultMaxClusterHitTot,
		MaxHitTot:        constants.DefaultMaxHitTot,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampU16(v, lo, hi uint16) uint16 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SetDx clamps to [1, Cols-1].
func (c *Config) SetDx(v int) { c.Dx = clampInt(v, 1, constants.Cols-1) }

// SetDy clamps to [1, Rows-1].
func (c *Config) SetDy(v int) { c.Dy = clampInt(v, 1, constants.Rows-1) }

// SetDbCID clamps to [0, MaxBCID-1].
func (c *Config) SetDbCID(v int) { c.DbCID = clampInt(v, 0, constants.MaxBCID-1) }

// SetMinClusterHits clamps to [1, MaxClusterHits].
func (c *Config) SetMinClusterHits(v int) { c.MinClusterHits = clampInt(v, 1, c.MaxClusterHits) }

// SetMaxClusterHits clamps to [MinClusterHits, Cols*Rows*MaxBCID].
func (c *Config) SetMaxClusterHits(v int) {
	c.MaxClusterHits = clampInt(v, c.MinClusterHits, constants.Cols*constants.Rows*constants.MaxBCID)
}

// SetMaxClusterHitTot clamps to [0, 4095] — FE-I4's 12-bit ToT range.
func (c *Config) SetMaxClusterHitTot(v uint16) { c.MaxClusterHitTot = clampU16(v, 0, 4095) }

// SetMaxHitTot clamps to [0, 4095].
func (c *Config) SetMaxHitTot(v uint16) { c.MaxHitTot = clampU16(v, 0, 4095) }

func (c Config) clusterConfig() cluster.Config {
	return cluster.Config{
		Dx:               c.Dx,
		Dy:               c.Dy,
		DbCID:            c.DbCID,
		MinClusterHits:   c.MinClusterHits,
		MaxClusterHits:   c.MaxClusterHits,
		MaxClusterHitTot: c.MaxClusterHitTot,
		MaxHitTot:        c.MaxHitTot,
	}
}

// Engine is the clusterizer's top-level, reusable instance.
type Engine struct {
	cfg     Config
	g       *grid.Grid
	acc     *event.Accumulator
	builder *cluster.Builder
	bank    *histogram.Bank

	clusterInfoBuf    []hit.Summary
	clusterHitInfoBuf []hit.Annotation

	nClusters int
	eventOpen bool
}

// New returns an Engine with default tunables and no output buffers set —
// AddHits still runs, just without annotation/summary output, same as the
// original with both create-array flags left false.
func New() *Engine {
	return &Engine{
		cfg:     DefaultConfig(),
		g:       grid.New(),
		acc:     event.New(),
		builder: cluster.NewBuilder(),
		bank:    histogram.New(),
	}
}

// Config returns a copy of the engine's current tunables.
func (e *Engine) Config() Config { return e.cfg }

// SetConfig replaces the engine's tunables wholesale; the caller is
// expected to have gone through Config's setters to get clamped values.
func (e *Engine) SetConfig(cfg Config) { e.cfg = cfg }

// SetClusterInfoBuffer installs the fixed-capacity ClusterSummary output
// buffer. Passing nil disables summary output.
func (e *Engine) SetClusterInfoBuffer(buf []hit.Summary) { e.clusterInfoBuf = buf }

// SetClusterHitInfoBuffer installs the fixed-capacity ClusterHitAnnotation
// output buffer. Passing nil disables per-hit annotation output.
func (e *Engine) SetClusterHitInfoBuffer(buf []hit.Annotation) { e.clusterHitInfoBuf = buf }

// ClusterInfo returns the committed cluster summaries written during the
// last AddHits batch into the installed buffer (empty if none is installed).
func (e *Engine) ClusterInfo() []hit.Summary {
	if e.clusterInfoBuf == nil {
		return nil
	}
	return e.clusterInfoBuf[:e.nClusters]
}

// ClusterHitInfo returns the installed annotation buffer as-is; the caller
// indexes it 1:1 with the HitRecord batch it was provided for.
func (e *Engine) ClusterHitInfo() []hit.Annotation { return e.clusterHitInfoBuf }

// GetNClusters is the count of clusters committed during the last AddHits
// batch.
func (e *Engine) GetNClusters() int { return e.nClusters }

// SizeHistogram and TotHistogram expose the engine's histogram bank.
func (e *Engine) SizeHistogram() []uint64 { return e.bank.Size() }
func (e *Engine) TotHistogram() []uint64  { return e.bank.Tot() }

// PosXHistogram, PosYHistogram, and ChargeHistogram expose the position
// and charge histograms — allocated and zeroed on Reset, but never
// written by the engine; see package histogram's doc comment.
func (e *Engine) PosXHistogram() []uint64   { return e.bank.PosX() }
func (e *Engine) PosYHistogram() []uint64   { return e.bank.PosY() }
func (e *Engine) ChargeHistogram() []uint64 { return e.bank.Charge() }

// Reset returns the engine to its just-constructed state: grid cleared,
// event accumulator reset, histograms zeroed, cluster counter zeroed.
// Output buffers stay installed; their contents are not cleared, only the
// count of valid entries (ClusterInfo()'s slice) goes back to zero.
func (e *Engine) Reset() {
	e.g.Reset()
	e.acc.Reset()
	e.bank.Reset()
	e.nClusters = 0
	e.eventOpen = false
}

// AddHits clusterizes one batch of hits, closing and clusterizing every
// event boundary found inside it plus the batch's final (still-open)
// event before returning — the fix to the original's tail-hit bug
// (spec.md §6/§9), where the last event of a batch was left unclusterized
// until a following batch arrived, or lost entirely if none did.
//
// Returns the first fatal error encountered (annotation buffer overflow,
// cluster summary buffer overflow, or histogram overflow). On error the
// batch is abandoned: the caller should Reset before reusing the engine.
func (e *Engine) AddHits(batch []hit.Record) error {
	e.nClusters = 0

	if len(batch) == 0 {
		return nil
	}

	if e.acc.EventNumber != 0 && batch[0].EventNumber == e.acc.EventNumber {
		diag.Warnf("batch starts with event %d, the last event of the previous batch; it is clusterized as a separate event", e.acc.EventNumber)
	}

	for i := range batch {
		rec := &batch[i]
		hitIdx := uint32(i)

		if e.clusterHitInfoBuf != nil && int(hitIdx) >= len(e.clusterHitInfoBuf) {
			return ErrClusterHitInfoOverflow
		}

		if e.eventOpen && rec.EventNumber != e.acc.EventNumber {
			if rec.EventNumber < e.acc.EventNumber {
				diag.Warnf("batch not sorted by event number: saw %d after %d", rec.EventNumber, e.acc.EventNumber)
			}
			if err := e.closeEvent(); err != nil {
				return err
			}
			e.eventOpen = false
		}
		if !e.eventOpen {
			e.acc.Reset()
			e.acc.EventNumber = rec.EventNumber
			e.eventOpen = true
		}

		e.acc.InsertHit(e.g, *rec, hitIdx, e.cfg.MaxHitTot, e.clusterHitInfoBuf)
	}

	if err := e.closeEvent(); err != nil {
		return err
	}
	e.eventOpen = false
	return nil
}

// closeEvent clusterizes the currently-open event's bounding box and
// commits the result, then advances the per-event cluster-id counter by
// however many clusters it committed.
func (e *Engine) closeEvent() error {
	if e.g.LiveHits() == 0 {
		return nil
	}

	results := e.builder.BuildEvent(
		e.g,
		e.acc.MinCol, e.acc.MaxCol,
		e.acc.MinRow, e.acc.MaxRow,
		e.acc.BCIDFirst, e.acc.BCIDLast,
		e.cfg.clusterConfig(),
		e.acc.ClusterID,
		e.clusterHitInfoBuf,
	)

	if e.g.LiveHits() != 0 {
		diag.Warnf("event %d: not all hits clustered, forcing grid reset", e.acc.EventNumber)
		e.g.ClearUsedCells()
	}

	if err := emit.CommitEvent(e.acc, results, e.clusterInfoBuf, &e.nClusters, e.clusterHitInfoBuf, e.bank); err != nil {
		return err
	}

	for i := range results {
		if results[i].Committed {
			e.acc.ClusterID++
		}
	}
	return nil
}

// DebugDump writes a human-readable summary of the engine's current
// state — grid occupancy and the open event's bounding box — mirroring
// the original Clusterizer::test()/showHits() debugging aids.
func (e *Engine) DebugDump(w io.Writer) {
	fmt.Fprintf(w, "event=%d status=%#x liveHits=%d nClusters=%d\n",
		e.acc.EventNumber, e.acc.EventStatus, e.g.LiveHits(), e.nClusters)
	fmt.Fprintf(w, "bbox col=[%d,%d] row=[%d,%d] bcid=[%d,%d]\n",
		e.acc.MinCol, e.acc.MaxCol, e.acc.MinRow, e.acc.MaxRow, e.acc.BCIDFirst, e.acc.BCIDLast)
	for _, dh := range e.g.DebugHits() {
		fmt.Fprintf(w, "  hit col=%d row=%d bcid=%d tot=%d\n", dh.Col, dh.Row, dh.BCID, dh.Tot)
	}
}
