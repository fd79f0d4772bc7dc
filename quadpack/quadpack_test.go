package quadpack

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/voxelsplace/binmesh/mesher"
)

func singleVoxelMesh(material uint8) *mesher.Mesh {
	d := mesher.NewDims(4)
	voxels := make([]uint8, d.Voxels())
	voxels[d.Index(2, 2, 2)] = material
	return mesher.MeshVoxels(voxels, d).Clone()
}

func TestArenaCommands(t *testing.T) {
	a := NewArena(DefaultArenaBytes)
	first := mesher.ChunkKey(0, 0, 0)
	second := mesher.ChunkKey(1, 0, 2)
	if err := a.AddMesh(first, singleVoxelMesh(1)); err != nil {
		t.Fatalf("AddMesh failed: %v", err)
	}
	if err := a.AddMesh(second, singleVoxelMesh(2)); err != nil {
		t.Fatalf("AddMesh failed: %v", err)
	}

	cmds := a.Commands()
	if len(cmds) != 12 || len(a.Quads()) != 12 {
		t.Fatalf("got %d commands over %d quads, want 12/12", len(cmds), len(a.Quads()))
	}
	for i, c := range cmds {
		if c.IndexCount != 6 || c.InstanceCount != 1 || c.FirstIndex != 0 {
			t.Fatalf("command %d: %+v", i, c)
		}
		if c.BaseVertex != uint32(i)<<2 {
			t.Fatalf("command %d base vertex %d, want %d", i, c.BaseVertex, i<<2)
		}
		if c.Face() != mesher.Face(i%6) {
			t.Fatalf("command %d face %s", i, c.Face())
		}
		wantKey := first
		if i >= 6 {
			wantKey = second
		}
		if c.Key() != wantKey {
			t.Fatalf("command %d key %#x, want %#x", i, c.Key(), wantKey)
		}
		if q := a.CommandQuads(c); len(q) != 1 || q[0].Material() != uint8(1+i/6) {
			t.Fatalf("command %d quads %+v", i, q)
		}
	}
	if a.Bytes() != 12*QuadBytes {
		t.Fatalf("arena uses %d bytes", a.Bytes())
	}
}

func TestArenaFull(t *testing.T) {
	a := NewArena(10 * QuadBytes)
	if err := a.AddMesh(0, singleVoxelMesh(1)); err != nil {
		t.Fatalf("first mesh should fit: %v", err)
	}
	err := a.AddMesh(1, singleVoxelMesh(1))
	if !errors.Is(err, ErrArenaFull) {
		t.Fatalf("got %v, want ErrArenaFull", err)
	}
	if a.Bytes() != 6*QuadBytes || len(a.Commands()) != 6 {
		t.Fatalf("rejected mesh was partly uploaded: %d bytes, %d commands", a.Bytes(), len(a.Commands()))
	}
}

func TestQuadIndices(t *testing.T) {
	got := QuadIndices(2)
	want := []uint32{2, 0, 1, 1, 3, 2, 6, 4, 5, 5, 7, 6}
	if len(got) != len(want) {
		t.Fatalf("got %d indices, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestVisibleFaces(t *testing.T) {
	same := VisibleFaces(ChunkPos{1, 1, 1}, ChunkPos{1, 1, 1})
	for f, v := range same {
		if !v {
			t.Fatalf("face %d hidden from inside its own chunk", f)
		}
	}

	above := VisibleFaces(ChunkPos{0, 3, 0}, ChunkPos{0, 1, 0})
	if !above[mesher.FacePosY] || above[mesher.FaceNegY] {
		t.Fatalf("camera above: %v", above)
	}
	west := VisibleFaces(ChunkPos{0, 0, 5}, ChunkPos{2, 0, 5})
	if west[mesher.FacePosX] || !west[mesher.FaceNegX] {
		t.Fatalf("camera at lower x: %v", west)
	}
	north := VisibleFaces(ChunkPos{0, 0, 9}, ChunkPos{0, 0, 4})
	if !north[mesher.FacePosZ] || north[mesher.FaceNegZ] {
		t.Fatalf("camera at higher z: %v", north)
	}
}

func TestArenaVisible(t *testing.T) {
	a := NewArena(DefaultArenaBytes)
	if err := a.AddMesh(mesher.ChunkKey(0, 0, 0), singleVoxelMesh(1)); err != nil {
		t.Fatalf("AddMesh failed: %v", err)
	}
	// Camera well above and beyond the chunk on every axis.
	eye := mgl32.Vec3{200, 200, 200}
	if got := CameraChunk(eye, mesher.CS); got != (ChunkPos{3, 3, 3}) {
		t.Fatalf("CameraChunk = %v", got)
	}
	vis := a.Visible(nil, eye, mesher.CS)
	if len(vis) != 3 {
		t.Fatalf("%d commands visible, want 3", len(vis))
	}
	for _, c := range vis {
		if c.Face()%2 != 0 {
			t.Fatalf("negative face %s drawn", c.Face())
		}
	}
	if got := CameraChunk(mgl32.Vec3{-1, 0, 61.9}, mesher.CS); got != (ChunkPos{-1, 0, 0}) {
		t.Fatalf("CameraChunk rounds toward zero: %v", got)
	}
}

func TestPackRoundTrip(t *testing.T) {
	a := NewArena(DefaultArenaBytes)
	for i := uint8(0); i < 4; i++ {
		if err := a.AddMesh(mesher.ChunkKey(i%2, 0, i/2), singleVoxelMesh(i+1)); err != nil {
			t.Fatalf("AddMesh failed: %v", err)
		}
	}
	p := FromArena(2, 4, a)

	for _, comp := range []Compression{CompNone, CompZstd} {
		data, err := p.Marshal(comp)
		if err != nil {
			t.Fatalf("%s: Marshal failed: %v", comp, err)
		}
		got, gotComp, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("%s: Unmarshal failed: %v", comp, err)
		}
		if gotComp != comp || got.ChunksPerSide != 2 || got.CS != 4 {
			t.Fatalf("%s: header %v %d %d", comp, gotComp, got.ChunksPerSide, got.CS)
		}
		if len(got.Quads) != len(p.Quads) || len(got.Commands) != len(p.Commands) {
			t.Fatalf("%s: sizes changed", comp)
		}
		for i := range p.Quads {
			if got.Quads[i] != p.Quads[i] {
				t.Fatalf("%s: quad %d differs", comp, i)
			}
		}
		for i := range p.Commands {
			if got.Commands[i] != p.Commands[i] {
				t.Fatalf("%s: command %d differs", comp, i)
			}
		}
		if rebuilt := got.Arena(); len(rebuilt.Visible(nil, mgl32.Vec3{}, 4)) == 0 {
			t.Fatalf("%s: rebuilt arena draws nothing", comp)
		}
	}
}

func TestUnmarshalRejectsDamage(t *testing.T) {
	a := NewArena(DefaultArenaBytes)
	if err := a.AddMesh(0, singleVoxelMesh(3)); err != nil {
		t.Fatalf("AddMesh failed: %v", err)
	}
	data, err := FromArena(1, 4, a).Marshal(CompNone)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	flipped := append([]byte(nil), data...)
	flipped[len(flipped)-1] ^= 0xFF
	badVersion := append([]byte(nil), data...)
	badVersion[8] = 9
	badComp := append([]byte(nil), data...)
	badComp[9] = 7

	// A well-formed, checksummed pack whose only command names face 7.
	badFace := FromArena(1, 4, a)
	badFace.Commands = append([]DrawCommand(nil), badFace.Commands[0])
	badFace.Commands[0].BaseInstance = 7<<24 | badFace.Commands[0].Key()
	badFaceData, err := badFace.Marshal(CompNone)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"short", data[:5], ErrNotPack},
		{"magic", append([]byte("NOTAPACK"), data[8:]...), ErrNotPack},
		{"version", badVersion, ErrVersion},
		{"compression", badComp, ErrCompression},
		{"checksum", flipped, ErrChecksum},
		{"face", badFaceData, ErrCorrupt},
	}
	for _, tc := range cases {
		if _, _, err := Unmarshal(tc.data); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestArenaMeshesRegroupChunks(t *testing.T) {
	a := NewArena(DefaultArenaBytes)
	want := []*mesher.Mesh{singleVoxelMesh(1), singleVoxelMesh(4)}
	keys := []uint32{mesher.ChunkKey(3, 0, 1), mesher.ChunkKey(0, 0, 2)}
	for i := range want {
		if err := a.AddMesh(keys[i], want[i]); err != nil {
			t.Fatalf("AddMesh failed: %v", err)
		}
	}
	got := a.Meshes()
	if len(got) != 2 {
		t.Fatalf("got %d chunk meshes", len(got))
	}
	for i, cm := range got {
		if cm.Key != keys[i] {
			t.Fatalf("mesh %d key %#x, want %#x", i, cm.Key, keys[i])
		}
		if cm.Mesh.FaceLen != want[i].FaceLen || cm.Mesh.FaceBegin != want[i].FaceBegin {
			t.Fatalf("mesh %d layout %v/%v", i, cm.Mesh.FaceBegin, cm.Mesh.FaceLen)
		}
		for j := range want[i].Quads {
			if cm.Mesh.Quads[j] != want[i].Quads[j] {
				t.Fatalf("mesh %d quad %d differs", i, j)
			}
		}
	}
}
