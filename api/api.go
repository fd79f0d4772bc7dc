// Package api exposes the in-memory conversions shared by the wasm build:
// bytes in, bytes out, no filesystem.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/voxelsplace/binmesh/export"
	"github.com/voxelsplace/binmesh/level"
	"github.com/voxelsplace/binmesh/mesher"
	"github.com/voxelsplace/binmesh/pipeline"
	"github.com/voxelsplace/binmesh/quadpack"
)

var quiet = slog.New(slog.DiscardHandler)

// ParseRLE reads a textual RLE stream such as "[1,5,0,3,2,1]" into bytes.
// Every value must fit in a byte.
func ParseRLE(rleArg string) ([]byte, error) {
	rleStr := strings.Trim(rleArg, "[] ")
	var rle []byte
	for _, p := range strings.Split(rleStr, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		i, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("failed to parse RLE '%s': %w", p, err)
		}
		rle = append(rle, byte(i))
	}
	if len(rle) == 0 {
		return nil, fmt.Errorf("empty RLE input")
	}
	return rle, nil
}

// RLEToLevel wraps one textual RLE chunk into a single-chunk level. The
// stream is decoded first so only meshable chunks are written.
func RLEToLevel(rleArg string) ([]byte, error) {
	rle, err := ParseRLE(rleArg)
	if err != nil {
		return nil, err
	}
	if _, err := mesher.MeshRLE(rle, mesher.Default); err != nil {
		return nil, fmt.Errorf("failed to decode RLE: %w", err)
	}
	return level.Encode(1, level.FlatStack(1, [][]byte{rle}))
}

func meshBytes(data []byte) (*level.Level, []pipeline.Result, error) {
	lvl, err := level.ParseAny(data)
	if err != nil {
		return nil, nil, err
	}
	results, err := pipeline.New(nil, quiet).MeshLevel(context.Background(), lvl)
	if err != nil {
		return nil, nil, err
	}
	return lvl, results, nil
}

// LevelToGLB meshes a level (raw or zstd) and returns a .glb with one node
// per non-empty chunk.
func LevelToGLB(data []byte) ([]byte, error) {
	_, results, err := meshBytes(data)
	if err != nil {
		return nil, err
	}
	return export.GLB(pipeline.ExportChunks(results), mesher.CS)
}

// LevelToQuadPack meshes a level and returns the packed quad buffer with
// its draw commands.
func LevelToQuadPack(data []byte, compress bool) ([]byte, error) {
	lvl, results, err := meshBytes(data)
	if err != nil {
		return nil, err
	}
	arena, err := pipeline.BuildArena(results, quadpack.DefaultArenaBytes)
	if err != nil {
		return nil, err
	}
	comp := quadpack.CompNone
	if compress {
		comp = quadpack.CompZstd
	}
	return quadpack.FromArena(lvl.ChunksPerSide, mesher.CS, arena).Marshal(comp)
}

// QuadPackToGLB converts a quad pack into a .glb without re-meshing.
func QuadPackToGLB(data []byte) ([]byte, error) {
	pack, _, err := quadpack.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	meshes := pack.Arena().Meshes()
	chunks := make([]export.Chunk, len(meshes))
	for i, cm := range meshes {
		chunks[i] = export.Chunk{Key: cm.Key, Mesh: cm.Mesh}
	}
	return export.GLB(chunks, int(pack.CS))
}

// LevelStats meshes a level and returns its aggregate statistics.
func LevelStats(data []byte) (pipeline.Summary, error) {
	_, results, err := meshBytes(data)
	if err != nil {
		return pipeline.Summary{}, err
	}
	return pipeline.Summarize(results), nil
}
