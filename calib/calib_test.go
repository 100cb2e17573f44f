package calib

import (
	"os"
	"path/filepath"
	"testing"

	"pixelcluster/grid"
)

func TestLoadJSONPopulatesChargeLUT(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calib.json")
	data := `[{"col":1,"row":1,"tot":5,"charge":1234.5}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	g := grid.New()
	if err := LoadJSON(path, g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c := g.Charge(0, 0, 5); c != 1234.5 {
		t.Fatalf("want charge=1234.5 at (0,0,5), got %v", c)
	}
}

func TestLoadJSONMissingFile(t *testing.T) {
	g := grid.New()
	if err := LoadJSON(filepath.Join(t.TempDir(), "missing.json"), g); err == nil {
		t.Fatalf("want error for missing calibration file")
	}
}
