package utils

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/voxelsplace/binmesh/export"
	"github.com/voxelsplace/binmesh/level"
	"github.com/voxelsplace/binmesh/pipeline"
	"github.com/voxelsplace/binmesh/quadpack"
)

func meshLevel(ctx context.Context, src string, cfg *pipeline.Config, log *slog.Logger) (*level.Level, []pipeline.Result, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("missing mesher config")
	}
	lvl, err := FetchLevel(ctx, src, log)
	if err != nil {
		return nil, nil, err
	}
	results, err := pipeline.New(cfg, log).MeshLevel(ctx, lvl)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to mesh %s: %w", src, err)
	}
	return lvl, results, nil
}

// RunMeshLevel meshes a level and writes the draw-ready quad pack.
func RunMeshLevel(ctx context.Context, src, outPath string, cfg *pipeline.Config, comp quadpack.Compression, log *slog.Logger) error {
	lvl, results, err := meshLevel(ctx, src, cfg, log)
	if err != nil {
		return err
	}
	arena, err := pipeline.BuildArena(results, cfg.ArenaBytes)
	if err != nil {
		return fmt.Errorf("failed to lay out quads: %w", err)
	}
	data, err := quadpack.FromArena(lvl.ChunksPerSide, cfg.ChunkSide, arena).Marshal(comp)
	if err != nil {
		return fmt.Errorf("failed to encode quad pack: %w", err)
	}
	if err := writeFile(outPath, data); err != nil {
		return err
	}
	log.Info("quad pack saved",
		"path", outPath,
		"bytes", len(data),
		"quads", len(arena.Quads()),
		"commands", len(arena.Commands()),
		"compression", comp.String())
	return nil
}

// RunLevelToGLB meshes a level and exports it as a .glb.
func RunLevelToGLB(ctx context.Context, src, outPath string, cfg *pipeline.Config, log *slog.Logger) error {
	_, results, err := meshLevel(ctx, src, cfg, log)
	if err != nil {
		return err
	}
	data, err := export.GLB(pipeline.ExportChunks(results), cfg.ChunkSide)
	if err != nil {
		return fmt.Errorf("failed to export glb: %w", err)
	}
	if err := writeFile(outPath, data); err != nil {
		return err
	}
	log.Info("glb saved", "path", outPath, "bytes", len(data))
	return nil
}

// RunQuadPackToGLB converts a pre-meshed quad pack into a .glb, one node
// per chunk.
func RunQuadPackToGLB(inPath, outPath string, log *slog.Logger) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	pack, comp, err := quadpack.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("failed to read quad pack %s: %w", inPath, err)
	}
	meshes := pack.Arena().Meshes()
	chunks := make([]export.Chunk, len(meshes))
	for i, cm := range meshes {
		chunks[i] = export.Chunk{Key: cm.Key, Mesh: cm.Mesh}
	}
	out, err := export.GLB(chunks, int(pack.CS))
	if err != nil {
		return fmt.Errorf("failed to export glb: %w", err)
	}
	if err := writeFile(outPath, out); err != nil {
		return err
	}
	log.Info("glb saved", "path", outPath, "chunks", len(chunks), "compression", comp.String())
	return nil
}

// RunLevelStats meshes a level and logs per-chunk and total statistics.
func RunLevelStats(ctx context.Context, src string, cfg *pipeline.Config, log *slog.Logger) (pipeline.Summary, error) {
	_, results, err := meshLevel(ctx, src, cfg, log)
	if err != nil {
		return pipeline.Summary{}, err
	}
	for _, r := range results {
		st := r.Mesh.Stats()
		x, y, z := (level.Entry{Key: r.Key}).Coords()
		log.Info("chunk",
			"x", x, "y", y, "z", z,
			"quads", st.Quads,
			"faces", st.FaceQuads,
			"visible", st.VisibleCells)
	}
	s := pipeline.Summarize(results)
	log.Info("level",
		"chunks", s.Chunks,
		"shared", s.Shared,
		"quads", s.Quads,
		"faces", s.FaceQuads,
		"visible", s.VisibleCells)
	return s, nil
}
