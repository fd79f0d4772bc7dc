// Package pipeline meshes every chunk of a level on a bounded worker pool.
// Each job borrows an exclusive workspace from a free list and returns it
// when done, so workspaces are reused serially and never shared.
package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/pkg/errors"

	"github.com/voxelsplace/binmesh/export"
	"github.com/voxelsplace/binmesh/level"
	"github.com/voxelsplace/binmesh/mesher"
	"github.com/voxelsplace/binmesh/quadpack"
)

// Result is the outcome for one level entry.
type Result struct {
	Index  int
	Key    uint32
	Digest uint64
	// Mesh is owned by the result. Deduplicated entries share one Mesh.
	Mesh *mesher.Mesh
	// SharedWith is the index of the entry whose mesh was reused, or -1.
	SharedWith int
	Err        error
}

// Mesher runs chunk jobs. It is safe to call MeshLevel from one goroutine at
// a time.
type Mesher struct {
	cfg  *Config
	log  *slog.Logger
	dims mesher.Dims
	free chan *mesher.Workspace
}

func New(cfg *Config, log *slog.Logger) *Mesher {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = slog.Default()
	}
	d := mesher.NewDims(cfg.ChunkSide)
	n := cfg.workers()
	free := make(chan *mesher.Workspace, n)
	for i := 0; i < n; i++ {
		free <- mesher.NewWorkspace(d, cfg.InitialQuads)
	}
	return &Mesher{cfg: cfg, log: log, dims: d, free: free}
}

func (m *Mesher) Dims() mesher.Dims { return m.dims }

// MeshLevel meshes every entry of lvl. Results come back in table order.
// Once ctx is done no further chunks are submitted and ctx's error is
// returned with the results finished so far. A chunk whose payload fails
// to decode keeps its error in its Result; the first such error is also
// returned.
func (m *Mesher) MeshLevel(ctx context.Context, lvl *level.Level) ([]Result, error) {
	start := time.Now()
	results := make([]Result, lvl.Len())

	jobs := make([]int, 0, lvl.Len())
	firstByDigest := make(map[uint64]int)
	for i, e := range lvl.Entries {
		r := &results[i]
		r.Index, r.Key, r.Digest, r.SharedWith = i, e.Key, lvl.Digest(i), -1
		if m.cfg.Dedupe {
			if j, ok := firstByDigest[r.Digest]; ok && bytes.Equal(lvl.Payload(i), lvl.Payload(j)) {
				r.SharedWith = j
				continue
			}
			firstByDigest[r.Digest] = i
		}
		jobs = append(jobs, i)
	}

	pool := pond.NewPool(m.cfg.workers())
	defer pool.StopAndWait()

	var wg sync.WaitGroup
	var cancelled error
	for _, i := range jobs {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			results[i].Mesh, results[i].Err = m.meshChunk(lvl.Payload(i))
		})
	}
	wg.Wait()

	var firstErr error
	quads := 0
	for i := range results {
		r := &results[i]
		if r.SharedWith >= 0 {
			src := results[r.SharedWith]
			r.Mesh, r.Err = src.Mesh, src.Err
		}
		x, y, z := mesher.ParseChunkKey(r.Key)
		switch {
		case r.Err != nil:
			m.log.Error("chunk failed", "index", i, "x", x, "y", y, "z", z, "error", r.Err)
			if firstErr == nil {
				firstErr = errors.Wrapf(r.Err, "chunk %d (%d,%d,%d)", i, x, y, z)
			}
		case r.Mesh != nil:
			quads += r.Mesh.Len()
			m.log.Debug("chunk meshed", "index", i, "x", x, "y", y, "z", z, "quads", r.Mesh.Len(), "shared", r.SharedWith >= 0)
		}
	}

	m.log.Info("level meshed",
		"chunks", len(results),
		"unique", len(jobs),
		"quads", quads,
		"workers", m.cfg.workers(),
		"elapsed", time.Since(start))

	if cancelled != nil {
		return results, errors.Wrap(cancelled, "meshing interrupted")
	}
	return results, firstErr
}

func (m *Mesher) meshChunk(rle []byte) (*mesher.Mesh, error) {
	ws := <-m.free
	defer func() { m.free <- ws }()

	if err := ws.DecodeChunk(rle); err != nil {
		return nil, err
	}
	return ws.Mesh().Clone(), nil
}

// ExportChunks pairs successful results with their keys for glTF export.
func ExportChunks(results []Result) []export.Chunk {
	chunks := make([]export.Chunk, 0, len(results))
	for _, r := range results {
		if r.Err == nil && r.Mesh != nil {
			chunks = append(chunks, export.Chunk{Key: r.Key, Mesh: r.Mesh})
		}
	}
	return chunks
}

// BuildArena uploads successful results into a quad arena in table order.
func BuildArena(results []Result, limitBytes int) (*quadpack.Arena, error) {
	a := quadpack.NewArena(limitBytes)
	for _, r := range results {
		if r.Err != nil || r.Mesh == nil {
			continue
		}
		if err := a.AddMesh(r.Key, r.Mesh); err != nil {
			return nil, errors.Wrapf(err, "chunk %d", r.Index)
		}
	}
	return a, nil
}

// Summary aggregates mesh statistics over a level.
type Summary struct {
	Chunks       int
	Failed       int
	Shared       int
	Quads        int
	FaceQuads    [mesher.FaceCount]int
	VisibleCells int
}

func Summarize(results []Result) Summary {
	var s Summary
	s.Chunks = len(results)
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
			continue
		}
		if r.SharedWith >= 0 {
			s.Shared++
		}
		if r.Mesh == nil {
			continue
		}
		st := r.Mesh.Stats()
		s.Quads += st.Quads
		s.VisibleCells += st.VisibleCells
		for f := range st.FaceQuads {
			s.FaceQuads[f] += st.FaceQuads[f]
		}
	}
	return s
}
