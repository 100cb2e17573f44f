// Package calib loads the charge calibration lookup table a Grid needs
// for charge-weighted centroids, from either a sqlite3 database (the
// format FE-I4 calibration scans are normally stored in) or a flat JSON
// dump. Loading happens once at startup, off the hot clusterization path.
package calib

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sugawarayuuta/sonnet"

	"pixelcluster/grid"
)

// Entry is one (column, row, ToT) -> charge calibration point. Column and
// Row are 1-based, matching hit.Record's convention.
type Entry struct {
	Col    int     `json:"col"`
	Row    int     `json:"row"`
	Tot    int     `json:"tot"`
	Charge float64 `json:"charge"`
}

// LoadSQLite reads every row of the "calibration" table (columns col,
// row, tot, charge) and populates g's charge LUT.
func LoadSQLite(dbPath string, g *grid.Grid) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("calib: open %s: %w", dbPath, err)
	}
	defer db.Close()

	rows, err := db.Query("SELECT col, row, tot, charge FROM calibration")
	if err != nil {
		return fmt.Errorf("calib: query calibration table: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Col, &e.Row, &e.Tot, &e.Charge); err != nil {
			return fmt.Errorf("calib: scan row %d: %w", n, err)
		}
		g.SetCharge(e.Col-1, e.Row-1, e.Tot, e.Charge)
		n++
	}
	return rows.Err()
}

// LoadJSON reads a flat JSON array of Entry and populates g's charge LUT.
func LoadJSON(path string, g *grid.Grid) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("calib: read %s: %w", path, err)
	}

	var entries []Entry
	if err := sonnet.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("calib: unmarshal %s: %w", path, err)
	}

	for _, e := range entries {
		g.SetCharge(e.Col-1, e.Row-1, e.Tot, e.Charge)
	}
	return nil
}
