// Package diag is the clusterizer's non-hot-path diagnostic logger.
//
// Warning-severity conditions (spec.md §7: duplicate hit, undersized
// cluster, batch alignment collision, "not all hits clustered") go
// through here. Fatal conditions are plain error returns, never logged
// from this package — the caller decides how to surface those.
package diag

import "log"

// Warnf logs a warning with a cheap, unformatted prefix. Mirrors the
// teacher's dropError: branch on whether there is anything beyond the
// prefix instead of paying for fmt.Sprintf on every call.
func Warnf(format string, args ...any) {
	if len(args) == 0 {
		log.Print("pixelcluster: " + format)
		return
	}
	log.Printf("pixelcluster: "+format, args...)
}
