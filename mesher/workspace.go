package mesher

// Workspace owns every buffer needed to mesh one chunk. A worker keeps one
// Workspace and reuses it serially; it must never be shared by two chunks
// being meshed at the same time.
type Workspace struct {
	dims Dims

	voxels []uint8
	opaque []uint64

	faceMasks     []uint64
	forwardMerged []uint8
	rightMerged   []uint8

	quads     []Quad
	faceBegin [FaceCount]int
	faceLen   [FaceCount]int
}

// NewWorkspace allocates the buffers for chunks of the given geometry.
// initialQuads is a capacity hint for the output list.
func NewWorkspace(d Dims, initialQuads int) *Workspace {
	cs2 := d.CS * d.CS
	return &Workspace{
		dims:          d,
		voxels:        make([]uint8, d.Voxels()),
		opaque:        make([]uint64, d.Columns()),
		faceMasks:     make([]uint64, FaceCount*cs2),
		forwardMerged: make([]uint8, cs2),
		rightMerged:   make([]uint8, d.CS),
		quads:         make([]Quad, 0, initialQuads),
	}
}

func (w *Workspace) Dims() Dims { return w.dims }

// Voxels exposes the padded voxel buffer of the last loaded chunk.
func (w *Workspace) Voxels() []uint8 { return w.voxels }

// Opaque exposes the opaque bitset of the last loaded chunk.
func (w *Workspace) Opaque() []uint64 { return w.opaque }

// Reset zeroes every buffer so the next chunk starts from a clean state.
// Decoding only writes the cells it covers, so skipping this leaks the
// previous chunk into the next one.
func (w *Workspace) Reset() {
	clear(w.voxels)
	clear(w.opaque)
	clear(w.faceMasks)
	clear(w.forwardMerged)
	clear(w.rightMerged)
	w.quads = w.quads[:0]
	w.faceBegin = [FaceCount]int{}
	w.faceLen = [FaceCount]int{}
}

// DecodeChunk resets the workspace and decodes an RLE payload into it.
func (w *Workspace) DecodeChunk(rle []byte) error {
	w.Reset()
	return DecodeRLE(rle, w.voxels, w.opaque, w.dims)
}

// LoadVoxels resets the workspace and copies a padded voxel buffer into it,
// deriving the opaque bitset.
func (w *Workspace) LoadVoxels(voxels []uint8) {
	w.Reset()
	w.dims.checkBuffers(voxels, w.opaque)
	copy(w.voxels, voxels)
	BuildOpaqueMask(w.voxels, w.opaque, w.dims)
}

// faceMask returns the CS² visibility words of one face.
func (w *Workspace) faceMask(f Face) []uint64 {
	cs2 := w.dims.CS * w.dims.CS
	return w.faceMasks[int(f)*cs2 : (int(f)+1)*cs2]
}
