package mesher

import "github.com/pkg/errors"

var (
	// ErrOddLength is returned for a stream that ends in half a pair.
	ErrOddLength = errors.New("rle stream has an odd trailing byte")
	// ErrZeroRun is returned for a pair with a run length of 0.
	ErrZeroRun = errors.New("rle stream has a zero-length run")
	// ErrOverrun is returned when the runs cover more cells than the chunk has.
	ErrOverrun = errors.New("rle stream overruns the chunk")
)

// DecodeRLE expands a stream of (material, length) byte pairs into voxels
// and sets the matching opaque bits. Both buffers must be zeroed by the
// caller: only the decoded prefix is written and the omitted trailing air
// run is left as is.
//
// A malformed stream leaves both buffers zeroed and returns an error wrapping
// ErrOddLength, ErrZeroRun or ErrOverrun. Buffers of the wrong size panic.
// A zero-length run is an error here, not a no-op: EncodeRLE never writes one.
func DecodeRLE(rle []byte, voxels []uint8, opaque []uint64, d Dims) error {
	d.checkBuffers(voxels, opaque)
	if len(rle)%2 != 0 {
		return errors.Wrapf(ErrOddLength, "%d bytes", len(rle))
	}

	mw := newMaskWriter(opaque, d)
	pos := 0
	for p := 0; p < len(rle); p += 2 {
		material, n := rle[p], int(rle[p+1])
		if n == 0 {
			clear(voxels[:pos])
			clear(opaque)
			return errors.Wrapf(ErrZeroRun, "run %d", p/2)
		}
		if pos+n > len(voxels) {
			clear(voxels[:pos])
			clear(opaque)
			return errors.Wrapf(ErrOverrun, "run %d ends at cell %d of %d", p/2, pos+n, len(voxels))
		}
		run := voxels[pos : pos+n]
		for i := range run {
			run[i] = material
		}
		if err := mw.writeRun(n, material != 0); err != nil {
			clear(voxels[:pos+n])
			clear(opaque)
			return errors.Wrapf(err, "run %d", p/2)
		}
		pos += n
	}
	return nil
}

// EncodeRLE is the canonical encoder: runs of at most 255 cells, with the
// trailing air run dropped.
func EncodeRLE(voxels []uint8) []byte {
	end := len(voxels)
	for end > 0 && voxels[end-1] == 0 {
		end--
	}

	out := make([]byte, 0, 256)
	for i := 0; i < end; {
		material := voxels[i]
		run := 1
		for i+run < end && voxels[i+run] == material && run < 255 {
			run++
		}
		out = append(out, material, byte(run))
		i += run
	}
	return out
}

// BuildOpaqueMask derives the opaque bitset straight from a voxel buffer.
// opaque is overwritten.
func BuildOpaqueMask(voxels []uint8, opaque []uint64, d Dims) {
	d.checkBuffers(voxels, opaque)
	clear(opaque)
	for col := range opaque {
		cells := voxels[col*d.CSP : (col+1)*d.CSP]
		var bits uint64
		for i, m := range cells {
			if m != 0 {
				bits |= 1 << uint(i)
			}
		}
		opaque[col] = bits
	}
}
