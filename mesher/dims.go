package mesher

import "github.com/pkg/errors"

const (
	CS  = 62
	CSP = CS + 2
)

// Dims holds the side lengths of one chunk: CS interior cells and CSP = CS+2
// cells including the one-cell halo on every face. A column of CSP cells is
// stored in the low CSP bits of one uint64, so CS never exceeds 62.
type Dims struct {
	CS  int
	CSP int
}

// Default is the canonical 62³ chunk (64³ with halo).
var Default = NewDims(CS)

// NewDims returns the geometry for a chunk with cs interior cells per side.
// Smaller sides are useful for tests; anything outside 1..62 panics.
func NewDims(cs int) Dims {
	if cs < 1 || cs > CS {
		panic(errors.Errorf("mesher: chunk side %d out of range 1..%d", cs, CS))
	}
	return Dims{CS: cs, CSP: cs + 2}
}

// Voxels is the length of a padded voxel buffer (CSP³).
func (d Dims) Voxels() int { return d.CSP * d.CSP * d.CSP }

// Columns is the length of an opaque bitset (CSP²).
func (d Dims) Columns() int { return d.CSP * d.CSP }

// Index returns the linear index of padded cell (x, y, z). z is the depth
// axis packed into column bits, x the row and y the layer.
func (d Dims) Index(x, y, z int) int {
	return z + x*d.CSP + y*d.CSP*d.CSP
}

// axisIndex maps sweep coordinates back to a linear voxel index. Axis 0 is
// used by the Y faces, 1 by the X faces and 2 by the Z faces.
func (d Dims) axisIndex(axis, a, b, c int) int {
	csp2 := d.CSP * d.CSP
	switch axis {
	case 0:
		return b + a*d.CSP + c*csp2
	case 1:
		return b + c*d.CSP + a*csp2
	default:
		return c + a*d.CSP + b*csp2
	}
}

// columnMask has one bit set for every cell of a column.
func (d Dims) columnMask() uint64 {
	if d.CSP >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(d.CSP) - 1
}

// interiorMask drops the two halo bits of a column.
func (d Dims) interiorMask() uint64 {
	return d.columnMask() &^ (1 | 1<<uint(d.CSP-1))
}

func (d Dims) checkBuffers(voxels []uint8, opaque []uint64) {
	if len(voxels) != d.Voxels() {
		panic(errors.Errorf("mesher: voxel buffer has %d cells, want %d", len(voxels), d.Voxels()))
	}
	if len(opaque) != d.Columns() {
		panic(errors.Errorf("mesher: opaque bitset has %d words, want %d", len(opaque), d.Columns()))
	}
}
