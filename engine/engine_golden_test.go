package engine

import (
	"encoding/binary"
	"testing"

	"golang.org/x/crypto/sha3"

	"pixelcluster/hit"
)

// fixtureBatch is a deterministic, reasonably dense stream spanning
// several events, used to check that two independently-run engines over
// the same input produce the same cluster summaries (event number,
// cluster id and size of each, compared through a SHA3-256 digest).
func fixtureBatch() []hit.Record {
	var batch []hit.Record
	for ev := uint64(1); ev <= 3; ev++ {
		for i := uint16(0); i < 6; i++ {
			batch = append(batch, rec(ev, 10+i, 10+i%3, i%5, 2+i))
		}
	}
	return batch
}

func digestOf(t *testing.T, summaries []hit.Summary) [32]byte {
	t.Helper()
	h := sha3.New256()
	var buf [8]byte
	for _, s := range summaries {
		binary.LittleEndian.PutUint64(buf[:], s.EventNumber)
		h.Write(buf[:])
		binary.LittleEndian.PutUint32(buf[:4], s.ClusterID)
		h.Write(buf[:4])
		binary.LittleEndian.PutUint64(buf[:], uint64(s.Size))
		h.Write(buf[:])
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

func TestEngineOutputIsDeterministic(t *testing.T) {
	run := func() []hit.Summary {
		e := New()
		e.SetClusterInfoBuffer(make([]hit.Summary, 256))
		if err := e.AddHits(fixtureBatch()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := make([]hit.Summary, e.GetNClusters())
		copy(out, e.ClusterInfo())
		return out
	}

	first := digestOf(t, run())
	second := digestOf(t, run())

	if first != second {
		t.Fatalf("expected identical digests across independent runs over the same input, got %x vs %x", first, second)
	}
}
