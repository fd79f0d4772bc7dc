// Package quadpack lays meshed chunks out the way an indirect-draw renderer
// consumes them: one shared quad buffer, one draw command per chunk face,
// and a shared index pattern. It also serializes that layout to disk.
package quadpack

import (
	"github.com/pkg/errors"

	"github.com/voxelsplace/binmesh/mesher"
)

const (
	// QuadBytes is the size of one quad record in the shared buffer.
	QuadBytes = 8
	// DefaultArenaBytes matches the storage buffer renderers allocate up front.
	DefaultArenaBytes = 512 << 20
)

var ErrArenaFull = errors.New("quad arena is out of space")

// DrawCommand mirrors DrawElementsIndirectCommand field for field.
type DrawCommand struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    uint32
	BaseInstance  uint32
}

// Face decodes the face index carried in BaseInstance.
func (c DrawCommand) Face() mesher.Face { return mesher.Face(c.BaseInstance >> 24) }

// Key decodes the chunk key carried in BaseInstance.
func (c DrawCommand) Key() uint32 { return c.BaseInstance & 0xFFFFFF }

// QuadCount is the number of quads the command draws.
func (c DrawCommand) QuadCount() int { return int(c.IndexCount / 6) }

// FirstQuad is the index of the command's first quad in the arena.
func (c DrawCommand) FirstQuad() int { return int(c.BaseVertex >> 2) }

// Arena is an append-only quad buffer plus the draw commands addressing it.
type Arena struct {
	limit    int
	quads    []mesher.Quad
	commands []DrawCommand
}

// NewArena returns an arena holding at most limitBytes of quads.
func NewArena(limitBytes int) *Arena {
	return &Arena{limit: limitBytes}
}

// Upload appends quads and returns the base vertex of the first one
// (quad index × 4).
func (a *Arena) Upload(quads []mesher.Quad) (uint32, error) {
	used := len(a.quads) * QuadBytes
	if used+len(quads)*QuadBytes > a.limit {
		return 0, errors.Wrapf(ErrArenaFull, "%d bytes used, %d requested, limit %d", used, len(quads)*QuadBytes, a.limit)
	}
	base := uint32(len(a.quads)) << 2
	a.quads = append(a.quads, quads...)
	return base, nil
}

// AddMesh uploads every non-empty face of a chunk mesh and records one draw
// command per face. A mesh that does not fit is rejected whole.
func (a *Arena) AddMesh(key uint32, m *mesher.Mesh) error {
	if used, need := a.Bytes(), m.Len()*QuadBytes; used+need > a.limit {
		return errors.Wrapf(ErrArenaFull, "%d bytes used, %d requested, limit %d", used, need, a.limit)
	}
	for f := mesher.Face(0); f < mesher.FaceCount; f++ {
		quads := m.Face(f)
		if len(quads) == 0 {
			continue
		}
		base, err := a.Upload(quads)
		if err != nil {
			return err
		}
		a.commands = append(a.commands, DrawCommand{
			IndexCount:    uint32(len(quads)) * 6,
			InstanceCount: 1,
			BaseVertex:    base,
			BaseInstance:  mesher.BaseInstance(f, key),
		})
	}
	return nil
}

func (a *Arena) Quads() []mesher.Quad { return a.quads }

func (a *Arena) Commands() []DrawCommand { return a.commands }

// Bytes is the space used in the quad buffer.
func (a *Arena) Bytes() int { return len(a.quads) * QuadBytes }

// CommandQuads returns the quads drawn by c.
func (a *Arena) CommandQuads(c DrawCommand) []mesher.Quad {
	first := c.FirstQuad()
	return a.quads[first : first+c.QuadCount()]
}

func (a *Arena) Reset() {
	a.quads = a.quads[:0]
	a.commands = a.commands[:0]
}

// QuadIndices builds the shared index buffer for n quads: two triangles per
// quad over its four vertices.
func QuadIndices(n int) []uint32 {
	pattern := [6]uint32{2, 0, 1, 1, 3, 2}
	out := make([]uint32, 0, n*6)
	for i := 0; i < n; i++ {
		base := uint32(i) << 2
		for _, v := range pattern {
			out = append(out, base|v)
		}
	}
	return out
}

// ChunkMesh is the per-chunk view of an arena.
type ChunkMesh struct {
	Key  uint32
	Mesh *mesher.Mesh
}

// Meshes regroups the arena's commands into one mesh per chunk key, in the
// order keys first appear. Faces keep their Face order within each mesh.
func (a *Arena) Meshes() []ChunkMesh {
	var out []ChunkMesh
	faces := make(map[uint32]*[mesher.FaceCount][]mesher.Quad)
	for _, c := range a.commands {
		k := c.Key()
		if _, ok := faces[k]; !ok {
			out = append(out, ChunkMesh{Key: k})
			faces[k] = new([mesher.FaceCount][]mesher.Quad)
		}
		f := faces[k]
		f[c.Face()] = append(f[c.Face()], a.CommandQuads(c)...)
	}
	for i := range out {
		m := &mesher.Mesh{}
		for f, quads := range faces[out[i].Key] {
			m.FaceBegin[f] = len(m.Quads)
			m.FaceLen[f] = len(quads)
			m.Quads = append(m.Quads, quads...)
		}
		out[i].Mesh = m
	}
	return out
}
