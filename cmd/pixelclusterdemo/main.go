// ════════════════════════════════════════════════════════════════════════════════════════════════
// Pixel Hit Clusterizer - Demo Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Description:
//   Minimal host process: load a charge calibration table (sqlite or
//   JSON), wire it into an Engine, feed it hits read from stdin as
//   comma-separated records, and print the resulting cluster summaries.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"pixelcluster/calib"
	"pixelcluster/engine"
	"pixelcluster/grid"
	"pixelcluster/hit"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: pixelclusterdemo <calibration.db|calibration.json> [< hits.csv]")
		os.Exit(2)
	}

	g := grid.New()
	calibPath := os.Args[1]
	var loadErr error
	if strings.HasSuffix(calibPath, ".json") {
		loadErr = calib.LoadJSON(calibPath, g)
	} else {
		loadErr = calib.LoadSQLite(calibPath, g)
	}
	if loadErr != nil {
		fmt.Fprintln(os.Stderr, "calibration load failed:", loadErr)
		os.Exit(1)
	}

	e := engine.New()
	summaries := make([]hit.Summary, 4096)
	annotations := make([]hit.Annotation, 65536)
	e.SetClusterInfoBuffer(summaries)
	e.SetClusterHitInfoBuffer(annotations)

	scanner := bufio.NewScanner(os.Stdin)
	var batch []hit.Record
	for scanner.Scan() {
		rec, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		batch = append(batch, rec)
	}

	if err := e.AddHits(batch); err != nil {
		fmt.Fprintln(os.Stderr, "clusterization aborted:", err)
		os.Exit(1)
	}

	for _, s := range e.ClusterInfo() {
		fmt.Printf("event=%d cluster=%d size=%d totSum=%d seed=(%d,%d) centroid=(%.1f,%.1f)um\n",
			s.EventNumber, s.ClusterID, s.Size, s.TotSum, s.SeedColumn, s.SeedRow, s.CentroidCol, s.CentroidRow)
	}
}

// parseLine reads "event,trigger,relBcid,lvlid,col,row,tot,bcid,tdc,triggerStatus,serviceRecord,eventStatus".
func parseLine(line string) (hit.Record, bool) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 12 {
		return hit.Record{}, false
	}
	v := make([]uint64, len(fields))
	for i, f := range fields {
		n, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return hit.Record{}, false
		}
		v[i] = n
	}
	return hit.Record{
		EventNumber:   v[0],
		TriggerNumber: uint32(v[1]),
		RelativeBCID:  uint16(v[2]),
		LVLID:         uint16(v[3]),
		Column:        uint16(v[4]),
		Row:           uint16(v[5]),
		Tot:           uint16(v[6]),
		BCID:          uint16(v[7]),
		TDC:           uint16(v[8]),
		TriggerStatus: uint32(v[9]),
		ServiceRecord: uint32(v[10]),
		EventStatus:   uint32(v[11]),
	}, true
}
