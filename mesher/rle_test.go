package mesher

import (
	"bytes"
	"math/bits"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
)

func randomVoxels(rng *rand.Rand, d Dims, fill float64, materials int) []uint8 {
	voxels := make([]uint8, d.Voxels())
	for i := range voxels {
		if rng.Float64() < fill {
			voxels[i] = uint8(1 + rng.Intn(materials))
		}
	}
	return voxels
}

func TestChunkKeyRoundTrip(t *testing.T) {
	cases := [][3]uint8{{0, 0, 0}, {1, 2, 3}, {255, 0, 17}, {255, 255, 255}}
	for _, c := range cases {
		key := ChunkKey(c[0], c[1], c[2])
		x, y, z := ParseChunkKey(key)
		if x != c[0] || y != c[1] || z != c[2] {
			t.Fatalf("key %#x decoded to (%d,%d,%d), want %v", key, x, y, z, c)
		}
	}
	if got := ChunkKey(3, 0, 5); got != 5<<16|3 {
		t.Fatalf("ChunkKey(3,0,5) = %#x", got)
	}
	if got := BaseInstance(FaceNegZ, ChunkKey(1, 2, 3)); got != 5<<24|3<<16|2<<8|1 {
		t.Fatalf("BaseInstance = %#x", got)
	}
}

func TestRLERoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, cs := range []int{1, 3, 8, 62} {
		d := NewDims(cs)
		for _, fill := range []float64{0, 0.05, 0.5, 0.97, 1} {
			voxels := randomVoxels(rng, d, fill, 3)
			rle := EncodeRLE(voxels)

			got := make([]uint8, d.Voxels())
			opaque := make([]uint64, d.Columns())
			if err := DecodeRLE(rle, got, opaque, d); err != nil {
				t.Fatalf("cs=%d fill=%.2f: decode failed: %v", cs, fill, err)
			}
			if !bytes.Equal(got, voxels) {
				t.Fatalf("cs=%d fill=%.2f: round trip mismatch", cs, fill)
			}

			want := make([]uint64, d.Columns())
			BuildOpaqueMask(voxels, want, d)
			for i := range want {
				if opaque[i] != want[i] {
					t.Fatalf("cs=%d fill=%.2f: opaque word %d = %#x, want %#x", cs, fill, i, opaque[i], want[i])
				}
			}
		}
	}
}

func TestEncodeRLECanonical(t *testing.T) {
	voxels := make([]uint8, 600)
	for i := 0; i < 300; i++ {
		voxels[i] = 4
	}
	voxels[301] = 2

	got := EncodeRLE(voxels)
	want := []byte{4, 255, 4, 45, 0, 1, 2, 1}
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeRLE = %v, want %v", got, want)
	}
	if len(EncodeRLE(make([]uint8, 10))) != 0 {
		t.Fatalf("all-air buffer should encode to an empty stream")
	}
}

func TestOpaqueMatchesInteriorVoxels(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	d := Default
	voxels := randomVoxels(rng, d, 0.4, 5)
	w := NewWorkspace(d, 0)
	if err := w.DecodeChunk(EncodeRLE(voxels)); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	solid := 0
	for y := 1; y <= d.CS; y++ {
		for x := 1; x <= d.CS; x++ {
			for z := 1; z <= d.CS; z++ {
				if voxels[d.Index(x, y, z)] != 0 {
					solid++
				}
			}
		}
	}

	set := 0
	interior := d.interiorMask()
	for y := 1; y <= d.CS; y++ {
		for x := 1; x <= d.CS; x++ {
			set += bits.OnesCount64(w.Opaque()[y*d.CSP+x] & interior)
		}
	}
	if set != solid {
		t.Fatalf("opaque popcount %d, interior solid cells %d", set, solid)
	}
}

func TestDecodeRLERejectsMalformed(t *testing.T) {
	d := NewDims(2) // 64 cells
	cases := []struct {
		name string
		rle  []byte
		want error
	}{
		{"odd length", []byte{1, 4, 2}, ErrOddLength},
		{"zero run", []byte{1, 4, 2, 0, 1, 1}, ErrZeroRun},
		{"overrun", []byte{1, 60, 2, 5}, ErrOverrun},
		{"single long run", []byte{3, 255}, ErrOverrun},
	}
	for _, tc := range cases {
		voxels := make([]uint8, d.Voxels())
		opaque := make([]uint64, d.Columns())
		err := DecodeRLE(tc.rle, voxels, opaque, d)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
		for i, v := range voxels {
			if v != 0 {
				t.Fatalf("%s: voxel %d left at %d after error", tc.name, i, v)
			}
		}
		for i, word := range opaque {
			if word != 0 {
				t.Fatalf("%s: opaque word %d left at %#x after error", tc.name, i, word)
			}
		}
	}
}

func TestDecodeRLEExactFit(t *testing.T) {
	d := NewDims(2)
	voxels := make([]uint8, d.Voxels())
	opaque := make([]uint64, d.Columns())
	if err := DecodeRLE([]byte{0, 10, 7, 54}, voxels, opaque, d); err != nil {
		t.Fatalf("stream covering the whole chunk rejected: %v", err)
	}
	if voxels[9] != 0 || voxels[10] != 7 || voxels[63] != 7 {
		t.Fatalf("unexpected voxels %v", voxels)
	}
	// Columns are 4 cells wide: cells 10 and 11 sit in word 2.
	if opaque[2] != 0b1100 || opaque[3] != 0b1111 || opaque[15] != 0b1111 {
		t.Fatalf("unexpected opaque words %b", opaque)
	}
}

func TestMaskWriterCrossesWords(t *testing.T) {
	words := make([]uint64, 4)
	mw := newMaskWriter(words, Default)
	steps := []struct {
		n      int
		opaque bool
	}{{60, false}, {8, true}, {128, true}, {2, false}, {3, true}}
	for _, s := range steps {
		if err := mw.writeRun(s.n, s.opaque); err != nil {
			t.Fatalf("writeRun(%d): %v", s.n, err)
		}
	}
	if words[0] != 0xF<<60 {
		t.Fatalf("word 0 = %#x", words[0])
	}
	if words[1] != ^uint64(0) || words[2] != ^uint64(0) {
		t.Fatalf("full words = %#x %#x", words[1], words[2])
	}
	if words[3] != 0b1111|0b111<<6 {
		t.Fatalf("word 3 = %#b", words[3])
	}
	if err := mw.writeRun(64, true); !errors.Is(err, ErrOverrun) {
		t.Fatalf("expected overrun, got %v", err)
	}
}
