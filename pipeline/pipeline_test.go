package pipeline

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/pkg/errors"

	"github.com/voxelsplace/binmesh/level"
	"github.com/voxelsplace/binmesh/mesher"
)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Workers = 4
	cfg.ChunkSide = 8
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func randomPayload(rng *rand.Rand, d mesher.Dims, fill float64) []byte {
	voxels := make([]uint8, d.Voxels())
	for i := range voxels {
		if rng.Float64() < fill {
			voxels[i] = uint8(1 + rng.Intn(4))
		}
	}
	return mesher.EncodeRLE(voxels)
}

func buildLevel(t *testing.T, n uint8, payloads [][]byte) *level.Level {
	t.Helper()
	data, err := level.Encode(n, level.FlatStack(n, payloads))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	lvl, err := level.Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return lvl
}

func TestMeshLevelMatchesSequential(t *testing.T) {
	cfg := testConfig()
	d := mesher.NewDims(cfg.ChunkSide)
	rng := rand.New(rand.NewSource(9))
	payloads := make([][]byte, 16)
	for i := range payloads {
		payloads[i] = randomPayload(rng, d, 0.5)
	}
	payloads[5] = payloads[2]
	payloads[11] = nil
	lvl := buildLevel(t, 4, payloads)

	m := New(cfg, quietLogger())
	results, err := m.MeshLevel(context.Background(), lvl)
	if err != nil {
		t.Fatalf("MeshLevel failed: %v", err)
	}
	if len(results) != 16 {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if r.Index != i || r.Key != lvl.Entries[i].Key {
			t.Fatalf("result %d out of order: %+v", i, r)
		}
		want, err := mesher.MeshRLE(payloads[i], d)
		if err != nil {
			t.Fatalf("sequential mesh %d: %v", i, err)
		}
		if r.Mesh.Len() != want.Len() || r.Mesh.FaceLen != want.FaceLen {
			t.Fatalf("chunk %d: %d quads, sequential %d", i, r.Mesh.Len(), want.Len())
		}
		for j := range want.Quads {
			if r.Mesh.Quads[j] != want.Quads[j] {
				t.Fatalf("chunk %d quad %d differs", i, j)
			}
		}
	}
	if results[5].SharedWith != 2 || results[5].Mesh != results[2].Mesh {
		t.Fatalf("duplicate payload was meshed twice: %+v", results[5])
	}
	if results[11].Mesh.Len() != 0 {
		t.Fatalf("empty payload produced quads")
	}

	s := Summarize(results)
	if s.Chunks != 16 || s.Shared != 1 || s.Failed != 0 || s.Quads == 0 {
		t.Fatalf("summary %+v", s)
	}
}

func TestMeshLevelWithoutDedupe(t *testing.T) {
	cfg := testConfig()
	cfg.Dedupe = false
	d := mesher.NewDims(cfg.ChunkSide)
	p := randomPayload(rand.New(rand.NewSource(1)), d, 0.3)
	lvl := buildLevel(t, 1, [][]byte{p})
	results, err := New(cfg, quietLogger()).MeshLevel(context.Background(), lvl)
	if err != nil {
		t.Fatalf("MeshLevel failed: %v", err)
	}
	if results[0].SharedWith != -1 || results[0].Mesh == nil {
		t.Fatalf("unexpected result %+v", results[0])
	}
}

func TestMeshLevelReportsBadChunk(t *testing.T) {
	cfg := testConfig()
	d := mesher.NewDims(cfg.ChunkSide)
	good := randomPayload(rand.New(rand.NewSource(2)), d, 0.4)
	lvl := buildLevel(t, 2, [][]byte{good, {1, 2, 3}, good, {1, 0}})

	results, err := New(cfg, quietLogger()).MeshLevel(context.Background(), lvl)
	if !errors.Is(err, mesher.ErrOddLength) {
		t.Fatalf("got %v, want ErrOddLength", err)
	}
	if !errors.Is(results[3].Err, mesher.ErrZeroRun) || results[1].Mesh != nil {
		t.Fatalf("bad chunks not reported: %+v %+v", results[1], results[3])
	}
	if results[0].Err != nil || results[0].Mesh == nil || results[2].Mesh == nil {
		t.Fatalf("good chunks were dropped")
	}

	a, err := BuildArena(results, cfg.ArenaBytes)
	if err != nil {
		t.Fatalf("BuildArena failed: %v", err)
	}
	if len(a.Quads()) != 2*results[0].Mesh.Len() {
		t.Fatalf("arena holds %d quads", len(a.Quads()))
	}
	if got := len(ExportChunks(results)); got != 2 {
		t.Fatalf("%d chunks exported, want 2", got)
	}
}

func TestMeshLevelCancelled(t *testing.T) {
	cfg := testConfig()
	d := mesher.NewDims(cfg.ChunkSide)
	lvl := buildLevel(t, 2, [][]byte{
		randomPayload(rand.New(rand.NewSource(3)), d, 0.4),
		randomPayload(rand.New(rand.NewSource(4)), d, 0.4),
		randomPayload(rand.New(rand.NewSource(5)), d, 0.4),
		randomPayload(rand.New(rand.NewSource(6)), d, 0.4),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := New(cfg, quietLogger()).MeshLevel(ctx, lvl)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	for _, r := range results {
		if r.Mesh != nil {
			t.Fatalf("chunk %d meshed after cancellation", r.Index)
		}
	}
}
