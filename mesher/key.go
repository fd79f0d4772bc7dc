package mesher

// ChunkKey packs a chunk coordinate into the 24-bit key stored in level files.
func ChunkKey(x, y, z uint8) uint32 {
	return uint32(z)<<16 | uint32(y)<<8 | uint32(x)
}

// ParseChunkKey is the inverse of ChunkKey. Bits above 23 are ignored.
func ParseChunkKey(key uint32) (x, y, z uint8) {
	return uint8(key), uint8(key >> 8), uint8(key >> 16)
}

// BaseInstance is the per-draw integer handed to the vertex shader: the face
// index in the top byte and the chunk key below it.
func BaseInstance(face Face, key uint32) uint32 {
	return uint32(face)<<24 | key&0xFFFFFF
}
