// Package snapshot serializes an engine's histogram bank to JSON, for
// periodic persistence between runs (e.g. a monitoring process polling
// cluster-size/ToT distributions without linking against the engine
// itself).
package snapshot

import (
	"os"

	"github.com/sugawarayuuta/sonnet"

	"pixelcluster/engine"
)

// Histograms is the on-disk shape of one snapshot.
type Histograms struct {
	Size   []uint64 `json:"size"`
	Tot    []uint64 `json:"tot"`
	PosX   []uint64 `json:"pos_x"`
	PosY   []uint64 `json:"pos_y"`
	Charge []uint64 `json:"charge"`
}

// Of builds a Histograms snapshot from an engine's current state. PosX,
// PosY, and Charge are included for completeness but stay all-zero —
// engine never writes them (see package histogram's doc comment).
func Of(e *engine.Engine) Histograms {
	return Histograms{
		Size:   e.SizeHistogram(),
		Tot:    e.TotHistogram(),
		PosX:   e.PosXHistogram(),
		PosY:   e.PosYHistogram(),
		Charge: e.ChargeHistogram(),
	}
}

// WriteFile marshals h to JSON and writes it to path.
func WriteFile(path string, h Histograms) error {
	data, err := sonnet.Marshal(h)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile reads and unmarshals a snapshot previously written by
// WriteFile.
func ReadFile(path string) (Histograms, error) {
	var h Histograms
	data, err := os.ReadFile(path)
	if err != nil {
		return h, err
	}
	err = sonnet.Unmarshal(data, &h)
	return h, err
}
