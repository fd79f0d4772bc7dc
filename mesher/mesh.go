package mesher

import "math/bits"

// Mesh is the quad list of one chunk grouped by face. Quads are stored face
// after face in Face order.
type Mesh struct {
	Quads     []Quad
	FaceBegin [FaceCount]int
	FaceLen   [FaceCount]int
}

// Face returns the quads of one face. The slice aliases m.Quads.
func (m *Mesh) Face(f Face) []Quad {
	return m.Quads[m.FaceBegin[f] : m.FaceBegin[f]+m.FaceLen[f]]
}

func (m *Mesh) Len() int { return len(m.Quads) }

// Clone returns a copy that does not alias any workspace buffer.
func (m *Mesh) Clone() *Mesh {
	out := *m
	out.Quads = append([]Quad(nil), m.Quads...)
	return &out
}

// Stats summarizes a mesh.
type Stats struct {
	Quads        int
	FaceQuads    [FaceCount]int
	VisibleCells int
}

func (m *Mesh) Stats() Stats {
	s := Stats{Quads: len(m.Quads), FaceQuads: m.FaceLen}
	for _, q := range m.Quads {
		s.VisibleCells += q.Area()
	}
	return s
}

// Mesh builds the face masks and runs both sweeps over the chunk currently
// loaded in the workspace. The returned Mesh aliases the workspace and is
// only valid until the next Reset; Clone it to keep it.
func (w *Workspace) Mesh() *Mesh {
	w.quads = w.quads[:0]
	w.buildFaceMasks()

	for f := Face(0); f < FaceCount; f++ {
		w.faceBegin[f] = len(w.quads)
		if f < FacePosZ {
			w.sweepLateral(f)
		} else {
			w.sweepVertical(f)
		}
		w.faceLen[f] = len(w.quads) - w.faceBegin[f]
	}

	return &Mesh{Quads: w.quads, FaceBegin: w.faceBegin, FaceLen: w.faceLen}
}

// VisibleCells is the number of exposed cell faces on one face, the popcount
// of its visibility words. It matches the quad area of that face.
func (w *Workspace) VisibleCells(f Face) int {
	n := 0
	for _, word := range w.faceMask(f) {
		n += bits.OnesCount64(word)
	}
	return n
}

// MeshVoxels meshes a padded voxel buffer with a throwaway workspace.
func MeshVoxels(voxels []uint8, d Dims) *Mesh {
	w := NewWorkspace(d, 0)
	w.LoadVoxels(voxels)
	return w.Mesh()
}

// MeshRLE decodes and meshes one RLE payload with a throwaway workspace.
func MeshRLE(rle []byte, d Dims) (*Mesh, error) {
	w := NewWorkspace(d, 0)
	if err := w.DecodeChunk(rle); err != nil {
		return nil, err
	}
	return w.Mesh(), nil
}
