// Package export turns meshed chunks into glTF binaries. Quads are expanded
// to vertices with the same rule the chunk vertex shader applies, so the
// exported file matches what the renderer draws.
package export

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/voxelsplace/binmesh/mesher"
)

// Palette is indexed by material-1; materials past the end wrap around.
var Palette = [8][4]float32{
	{0.2, 0.659, 0.839, 1},
	{0.302, 0.302, 0.302, 1},
	{0.278, 0.600, 0.141, 1},
	{0.1, 0.1, 0.6, 1},
	{0.1, 0.6, 0.6, 1},
	{0.6, 0.1, 0.6, 1},
	{0.6, 0.6, 0.1, 1},
	{0.6, 0.1, 0.1, 1},
}

// MaterialColor returns the RGBA colour of a non-air material.
func MaterialColor(material uint8) [4]float32 {
	return Palette[(int(material)+len(Palette)-1)%len(Palette)]
}

var quadPattern = [6]uint32{2, 0, 1, 1, 3, 2}

// Chunk is one meshed chunk to export.
type Chunk struct {
	Key  uint32
	Mesh *mesher.Mesh
}

// Geometry is the vertex data of one chunk in chunk-local coordinates.
type Geometry struct {
	Positions [][3]float32
	Normals   [][3]float32
	Colors    [][4]float32
	Indices   []uint32
}

// QuadCorner returns vertex v (0..3) of a quad: bit 1 of v selects the far
// width edge and bit 0 the far height edge.
func QuadCorner(f mesher.Face, q mesher.Quad, v int) mgl32.Vec3 {
	pos := mgl32.Vec3{float32(q.X()), float32(q.Y()), float32(q.Z())}
	wDir, hDir := f.Axes()
	wMod, hMod := v>>1, v&1
	pos[wDir] += float32(int(q.W()) * wMod * f.Flip())
	pos[hDir] += float32(int(q.H()) * hMod)
	return pos
}

// BuildGeometry expands every quad of a mesh into four vertices and two
// triangles.
func BuildGeometry(m *mesher.Mesh) Geometry {
	n := m.Len()
	g := Geometry{
		Positions: make([][3]float32, 0, n*4),
		Normals:   make([][3]float32, 0, n*4),
		Colors:    make([][4]float32, 0, n*4),
		Indices:   make([]uint32, 0, n*6),
	}
	for f := mesher.Face(0); f < mesher.FaceCount; f++ {
		normal := [3]float32(f.Normal())
		for _, q := range m.Face(f) {
			base := uint32(len(g.Positions))
			color := MaterialColor(q.Material())
			for v := 0; v < 4; v++ {
				g.Positions = append(g.Positions, [3]float32(QuadCorner(f, q, v)))
				g.Normals = append(g.Normals, normal)
				g.Colors = append(g.Colors, color)
			}
			for _, i := range quadPattern {
				g.Indices = append(g.Indices, base+i)
			}
		}
	}
	return g
}

// Document builds a glTF document with one mesh and node per non-empty
// chunk. Nodes are translated by the chunk key times cs.
func Document(chunks []Chunk, cs int) *gltf.Document {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "binmesh"

	pbr := &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float64{1, 1, 1, 1}, MetallicFactor: gltf.Float(0), RoughnessFactor: gltf.Float(1)}
	doc.Materials = []*gltf.Material{{PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque}}

	for _, c := range chunks {
		if c.Mesh == nil || c.Mesh.Len() == 0 {
			continue
		}
		g := BuildGeometry(c.Mesh)
		posAccessor := modeler.WritePosition(doc, g.Positions)
		normalAccessor := modeler.WriteNormal(doc, g.Normals)
		colorAccessor := modeler.WriteColor(doc, g.Colors)
		indicesAccessor := modeler.WriteIndices(doc, g.Indices)

		x, y, z := mesher.ParseChunkKey(c.Key)
		name := fmt.Sprintf("chunk_%d_%d_%d", x, y, z)
		prim := &gltf.Primitive{
			Attributes: gltf.PrimitiveAttributes{
				gltf.POSITION: posAccessor,
				gltf.NORMAL:   normalAccessor,
				gltf.COLOR_0:  colorAccessor,
			},
			Indices:  gltf.Index(indicesAccessor),
			Material: gltf.Index(0),
		}
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}})

		offset := mgl64.Vec3{float64(x), float64(y), float64(z)}.Mul(float64(cs))
		node := &gltf.Node{Name: name, Mesh: gltf.Index(len(doc.Meshes) - 1)}
		node.Translation = [3]float64(offset)
		doc.Nodes = append(doc.Nodes, node)
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}
	return doc
}

// GLB encodes the chunks as a binary glTF.
func GLB(chunks []Chunk, cs int) ([]byte, error) {
	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(Document(chunks, cs)); err != nil {
		return nil, errors.Wrap(err, "encoding glb")
	}
	return out.Bytes(), nil
}

// SaveGLB writes the chunks to a .glb file.
func SaveGLB(path string, chunks []Chunk, cs int) error {
	data, err := GLB(chunks, cs)
	if err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "writing %s", path)
}
