package pipeline

import (
	"runtime"

	"github.com/voxelsplace/binmesh/mesher"
	"github.com/voxelsplace/binmesh/quadpack"
)

// Config holds the meshing pipeline settings.
type Config struct {
	Workers      int  // concurrent chunk jobs, one workspace each
	InitialQuads int  // quad capacity hint per workspace
	Dedupe       bool // mesh byte-identical payloads once
	ChunkSide    int  // interior cells per chunk side
	ArenaBytes   int  // quad buffer limit when building draw lists
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers:      runtime.NumCPU(),
		InitialQuads: 10_000,
		Dedupe:       true,
		ChunkSide:    mesher.CS,
		ArenaBytes:   quadpack.DefaultArenaBytes,
	}
}

func (c *Config) workers() int {
	if c.Workers < 1 {
		return 1
	}
	return c.Workers
}
