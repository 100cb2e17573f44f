// Package emit commits the raw cluster.Result set produced for one event
// into the clusterizer's output surface: the optional ClusterSummary
// buffer, the optional per-hit ClusterHitAnnotation stamps, and the
// histogram bank. It enforces the cluster_info (summary buffer) capacity
// and passes on the histogram bin overflow reported by histogram.Bank.Add;
// the cluster_hit_info (annotation buffer) capacity is checked earlier,
// by engine.AddHits, and annotation slots beyond the buffer are skipped
// here.
package emit

import (
	"errors"

	"pixelcluster/cluster"
	"pixelcluster/event"
	"pixelcluster/hit"
	"pixelcluster/histogram"
)

// ErrClusterInfoOverflow is fatal: more clusters were committed this batch
// than the caller's ClusterSummary buffer can hold.
var ErrClusterInfoOverflow = errors.New("emit: cluster summary buffer exhausted")

// CommitEvent writes every committed cluster.Result in results to
// clusterInfoBuf (if non-nil) starting at *nClusters, advancing *nClusters
// as it goes, folds size/ToT into bank, and — if annotations is non-nil —
// stamps IsSeed on every committed seed hit and ClusterSize/
// NClustersInEvent on every hit consumed by any raw cluster (committed or
// discarded), per spec.md §4.D's "every clustered hit is stamped" rule.
//
// Returns the first fatal error encountered (buffer or histogram
// overflow). The caller must treat this as abandoning the whole batch:
// CommitEvent does not try to undo partial writes already made.
func CommitEvent(acc *event.Accumulator, results []cluster.Result, clusterInfoBuf []hit.Summary, nClusters *int, annotations []hit.Annotation, bank *histogram.Bank) error {
	committedInEvent := 0

	for i := range results {
		res := &results[i]
		if !res.Committed {
			continue
		}
		committedInEvent++

		if annotations != nil && int(res.SeedHitIdx) < len(annotations) {
			annotations[res.SeedHitIdx].IsSeed = true
		}

		if clusterInfoBuf != nil {
			if *nClusters >= len(clusterInfoBuf) {
				return ErrClusterInfoOverflow
			}
			clusterInfoBuf[*nClusters] = summaryOf(acc, res)
			*nClusters++
		}

		if err := bank.Add(res.Size, res.TotSum); err != nil {
			return err
		}
	}

	if annotations != nil {
		for i := range results {
			res := &results[i]
			for _, hitIdx := range res.HitIndices {
				if int(hitIdx) >= len(annotations) {
					continue
				}
				annotations[hitIdx].ClusterSize = res.Size
				annotations[hitIdx].NClustersInEvent = committedInEvent
				annotations[hitIdx].Stamped = true
			}
		}
	}

	return nil
}

func summaryOf(acc *event.Accumulator, res *cluster.Result) hit.Summary {
	s := hit.Summary{
		EventNumber: acc.EventNumber,
		ClusterID:   res.ClusterID,
		Size:        res.Size,
		TotSum:      res.TotSum,
		ChargeSum:   res.ChargeSum,
		SeedColumn:  uint16(res.SeedCol + 1),
		SeedRow:     uint16(res.SeedRow + 1),
		EventStatus: acc.EventStatus,
	}
	if res.ChargeSum > 0 {
		s.CentroidCol = res.XMoment / res.ChargeSum
		s.CentroidRow = res.YMoment / res.ChargeSum
	}
	return s
}
