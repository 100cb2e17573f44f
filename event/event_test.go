package event

import (
	"testing"

	"pixelcluster/grid"
	"pixelcluster/hit"
)

func rec(eventNumber uint64, col, row, bcid, tot uint16) hit.Record {
	return hit.Record{
		EventNumber:  eventNumber,
		Column:       col,
		Row:          row,
		RelativeBCID: bcid,
		Tot:          tot,
	}
}

func TestInsertHitExpandsBoundingBox(t *testing.T) {
	g := grid.New()
	a := New()
	a.EventNumber = 1

	a.InsertHit(g, rec(1, 10, 20, 2, 5), 0, 13, nil)
	a.InsertHit(g, rec(1, 5, 30, 4, 5), 1, 13, nil)

	if a.MinCol != 4 || a.MaxCol != 9 {
		t.Fatalf("want col bounds [4,9] (0-based), got [%d,%d]", a.MinCol, a.MaxCol)
	}
	if a.MinRow != 19 || a.MaxRow != 29 {
		t.Fatalf("want row bounds [19,29] (0-based), got [%d,%d]", a.MinRow, a.MaxRow)
	}
	if a.BCIDFirst != 2 || a.BCIDLast != 4 {
		t.Fatalf("want bcid bounds [2,4], got [%d,%d]", a.BCIDFirst, a.BCIDLast)
	}
	if g.LiveHits() != 2 {
		t.Fatalf("want 2 live hits, got %d", g.LiveHits())
	}
}

func TestInsertHitDropsOverTot(t *testing.T) {
	g := grid.New()
	a := New()
	a.EventNumber = 1

	a.InsertHit(g, rec(1, 10, 20, 0, 99), 0, 13, nil)
	if g.LiveHits() != 0 {
		t.Fatalf("expected over-ToT hit to be silently dropped, got liveHits=%d", g.LiveHits())
	}
}

func TestInsertHitDuplicateKeepsFirstOccupant(t *testing.T) {
	g := grid.New()
	a := New()
	a.EventNumber = 1

	a.InsertHit(g, rec(1, 10, 20, 0, 3), 0, 13, nil)
	a.InsertHit(g, rec(1, 10, 20, 0, 9), 1, 13, nil)

	if g.LiveHits() != 1 {
		t.Fatalf("want 1 live hit after duplicate insert, got %d", g.LiveHits())
	}
	if tot, hitIdx, _ := g.Take(9, 19, 0); tot != 3 || hitIdx != 0 {
		t.Fatalf("want first occupant tot=3 hitIdx=0 kept, got tot=%d hitIdx=%d", tot, hitIdx)
	}
}

func TestInsertHitAnnotationsInitialized(t *testing.T) {
	g := grid.New()
	a := New()
	a.EventNumber = 1
	anns := make([]hit.Annotation, 1)

	a.InsertHit(g, rec(1, 10, 20, 0, 3), 0, 13, anns)

	if anns[0].Stamped {
		t.Fatalf("expected freshly inserted annotation to be unstamped")
	}
	if anns[0].ClusterSize != -1 || anns[0].NClustersInEvent != -1 {
		t.Fatalf("expected sentinel -1 fields before stamping, got size=%d n=%d", anns[0].ClusterSize, anns[0].NClustersInEvent)
	}
}
