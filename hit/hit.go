// Package hit defines the wire-level record types the clusterizer consumes
// and produces. HitRecord is the caller's input; ClusterHitAnnotation and
// ClusterSummary are the two optional output shapes.
package hit

// Record is one pixel hit, pinned to a logical event by EventNumber.
// Column and Row are 1-based; the grid underneath is 0-based.
type Record struct {
	EventNumber  uint64
	TriggerNumber uint32
	RelativeBCID uint16
	LVLID        uint16
	Column       uint16
	Row          uint16
	Tot          uint16
	BCID         uint16
	TDC          uint16
	TriggerStatus uint32
	ServiceRecord uint32
	EventStatus  uint32
}

// Annotation is the optional per-hit output, indexed 1:1 with the input
// Record slice. ClusterID and IsSeed are only meaningful once Stamped is
// true; until then the hit's event is still open.
type Annotation struct {
	EventNumber   uint64
	TriggerNumber uint32
	RelativeBCID  uint16
	LVLID         uint16
	Column        uint16
	Row           uint16
	Tot           uint16
	BCID          uint16
	TDC           uint16
	TriggerStatus uint32
	ServiceRecord uint32
	EventStatus   uint32

	ClusterID uint32
	IsSeed    bool

	// ClusterSize and NClustersInEvent are -1 until the owning event has
	// been fully clusterized (see engine.Engine.closeEvent), at which
	// point every live annotation in that event is stamped in one pass.
	ClusterSize      int
	NClustersInEvent int

	// Stamped is true once ClusterSize/NClustersInEvent hold real values.
	// A hit dropped for tot > MaxHitTot is never stamped.
	Stamped bool
}

// Summary is one committed cluster's result, emitted alongside (or
// instead of) per-hit annotations.
type Summary struct {
	EventNumber uint64
	ClusterID   uint32
	Size        int
	TotSum      int
	ChargeSum   float64

	// SeedColumn/SeedRow are 1-based, matching Record's convention.
	SeedColumn uint16
	SeedRow    uint16

	EventStatus uint32

	// CentroidCol/CentroidRow are the charge-weighted centroid in
	// physical units (um), zero when ChargeSum is zero.
	CentroidCol float64
	CentroidRow float64
}
