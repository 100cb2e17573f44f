package cluster

import (
	"testing"

	"pixelcluster/grid"
)

func defaultConfig() Config {
	return Config{
		Dx:               1,
		Dy:               2,
		DbCID:            4,
		MinClusterHits:   1,
		MaxClusterHits:   9,
		MaxClusterHitTot: 13,
		MaxHitTot:        13,
	}
}

func insertOrFatal(t *testing.T, g *grid.Grid, col, row, bcid int, tot int16, hitIdx uint32) {
	t.Helper()
	if err := g.Insert(col, row, bcid, tot, hitIdx); err != nil {
		t.Fatalf("Insert(%d,%d,%d) failed: %v", col, row, bcid, err)
	}
}

func TestBuildEventSingleIsolatedHit(t *testing.T) {
	g := grid.New()
	insertOrFatal(t, g, 10, 10, 0, 5, 0)

	b := NewBuilder()
	results := b.BuildEvent(g, 10, 10, 10, 10, 0, 0, defaultConfig(), 0, nil)

	if len(results) != 1 {
		t.Fatalf("want 1 result, got %d", len(results))
	}
	if results[0].Size != 1 || !results[0].Committed {
		t.Fatalf("want committed size-1 cluster, got size=%d committed=%v", results[0].Size, results[0].Committed)
	}
	if g.LiveHits() != 0 {
		t.Fatalf("expected grid drained, liveHits=%d", g.LiveHits())
	}
}

func TestBuildEventAdjacentHitsSameBCIDMerge(t *testing.T) {
	g := grid.New()
	insertOrFatal(t, g, 10, 10, 0, 3, 0)
	insertOrFatal(t, g, 11, 10, 0, 9, 1) // one column to the right, within dx=1

	b := NewBuilder()
	results := b.BuildEvent(g, 10, 11, 10, 10, 0, 0, defaultConfig(), 0, nil)

	if len(results) != 1 {
		t.Fatalf("want 1 merged cluster, got %d results", len(results))
	}
	if results[0].Size != 2 {
		t.Fatalf("want merged size=2, got %d", results[0].Size)
	}
	if results[0].SeedCol != 11 || results[0].SeedRow != 10 {
		t.Fatalf("want seed at higher-ToT cell (11,10), got (%d,%d)", results[0].SeedCol, results[0].SeedRow)
	}
}

func TestBuildEventBeyondSpatialWindowStaysSeparate(t *testing.T) {
	g := grid.New()
	insertOrFatal(t, g, 10, 10, 0, 3, 0)
	insertOrFatal(t, g, 10, 13, 0, 3, 1) // row offset 3, beyond dy=2

	b := NewBuilder()
	results := b.BuildEvent(g, 10, 10, 10, 13, 0, 0, defaultConfig(), 0, nil)

	if len(results) != 2 {
		t.Fatalf("want 2 separate clusters, got %d", len(results))
	}
	for _, r := range results {
		if r.Size != 1 {
			t.Fatalf("want both clusters size=1, got %d", r.Size)
		}
	}
}

func TestBuildEventTemporalSpreadMerges(t *testing.T) {
	g := grid.New()
	insertOrFatal(t, g, 10, 10, 0, 3, 0)
	insertOrFatal(t, g, 11, 10, 4, 3, 1) // one column over, bcid offset = DbCID (forward edge of the window)

	b := NewBuilder()
	results := b.BuildEvent(g, 10, 11, 10, 10, 0, 4, defaultConfig(), 0, nil)

	if len(results) != 1 {
		t.Fatalf("want hits merged across the temporal window, got %d clusters", len(results))
	}
	if results[0].Size != 2 {
		t.Fatalf("want merged size=2, got %d", results[0].Size)
	}
}

func TestBuildEventOversizeAborts(t *testing.T) {
	cfg := defaultConfig()
	cfg.MaxClusterHits = 2

	g := grid.New()
	insertOrFatal(t, g, 10, 10, 0, 3, 0)
	insertOrFatal(t, g, 11, 10, 0, 3, 1)
	insertOrFatal(t, g, 12, 10, 0, 3, 2)

	b := NewBuilder()
	results := b.BuildEvent(g, 10, 12, 10, 10, 0, 0, cfg, 0, nil)

	if len(results) != 1 {
		t.Fatalf("want 1 raw (aborted) cluster, got %d", len(results))
	}
	if !results[0].Abort || results[0].Committed {
		t.Fatalf("want aborted, uncommitted cluster, got abort=%v committed=%v", results[0].Abort, results[0].Committed)
	}
	if g.LiveHits() != 0 {
		t.Fatalf("expected all hits still consumed from the grid despite abort, liveHits=%d", g.LiveHits())
	}
}

func TestBuildEventClusterIDAssignment(t *testing.T) {
	g := grid.New()
	insertOrFatal(t, g, 10, 10, 0, 3, 0)
	insertOrFatal(t, g, 20, 10, 0, 3, 1)

	b := NewBuilder()
	results := b.BuildEvent(g, 10, 20, 10, 10, 0, 0, defaultConfig(), 5, nil)

	if len(results) != 2 {
		t.Fatalf("want 2 separate clusters, got %d", len(results))
	}
	if results[0].ClusterID != 5 || results[1].ClusterID != 6 {
		t.Fatalf("want cluster ids 5,6 in scan order, got %d,%d", results[0].ClusterID, results[1].ClusterID)
	}
}
