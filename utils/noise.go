package utils

import (
	"fmt"
	"math/rand"

	"github.com/voxelsplace/binmesh/level"
	"github.com/voxelsplace/binmesh/mesher"
)

// noiseMaterials is the number of distinct materials the generator uses.
const noiseMaterials = 7

// generateNoiseChunk fills the given percentage of a chunk's interior with
// random materials 1..noiseMaterials. The halo stays empty.
func generateNoiseChunk(d mesher.Dims, percentage float64, r *rand.Rand) []uint8 {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	total := d.CS * d.CS * d.CS
	want := int(float64(total)*(percentage/100.0) + 0.5)
	if want > total {
		want = total
	}

	idx := make([]int, total)
	for i := range idx {
		idx[i] = i
	}
	// partial shuffle: idx[:want] ends up a uniform sample of the interior
	for i := 0; i < want; i++ {
		j := i + r.Intn(total-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	voxels := make([]uint8, d.Voxels())
	cs2 := d.CS * d.CS
	for _, i := range idx[:want] {
		y := i / cs2
		rem := i % cs2
		x := rem / d.CS
		z := rem % d.CS
		voxels[d.Index(x+1, y+1, z+1)] = uint8(1 + r.Intn(noiseMaterials))
	}
	return voxels
}

// GenerateNoiseLevel builds an n×n flat stack of noise chunks. Each chunk
// gets its own fill percentage drawn from [percentageMin, percentageMax]
// and its own generator derived from seed.
func GenerateNoiseLevel(d mesher.Dims, n uint8, percentageMin, percentageMax float64, seed int64) ([]byte, error) {
	if percentageMin < 0 {
		percentageMin = 0
	}
	if percentageMax > 100 {
		percentageMax = 100
	}
	if percentageMax < percentageMin {
		percentageMin, percentageMax = percentageMax, percentageMin
	}

	count := int(n) * int(n)
	payloads := make([][]byte, count)
	for i := 0; i < count; i++ {
		// chunk i draws from seed mixed with (i+1) times the golden-ratio constant
		const weyl = uint64(0x9e3779b97f4a7c15)
		s := uint64(seed) ^ (uint64(i)+1)*weyl
		r := rand.New(rand.NewSource(int64(s & 0x7fffffffffffffff)))

		perc := percentageMin
		if percentageMax > percentageMin {
			perc = percentageMin + r.Float64()*(percentageMax-percentageMin)
		}
		payloads[i] = mesher.EncodeRLE(generateNoiseChunk(d, perc, r))
	}
	return level.Encode(n, level.FlatStack(n, payloads))
}

// RunGenerateNoiseLevel writes a noise level to outPath, zstd-compressed
// when compress is set.
func RunGenerateNoiseLevel(chunksPerSide int, percentageMin, percentageMax float64, seed int64, compress bool, outPath string) error {
	if chunksPerSide < 1 || chunksPerSide > 255 {
		return fmt.Errorf("chunks per side must be in 1..255, got %d", chunksPerSide)
	}
	data, err := GenerateNoiseLevel(mesher.Default, uint8(chunksPerSide), percentageMin, percentageMax, seed)
	if err != nil {
		return fmt.Errorf("failed to build level: %w", err)
	}
	if compress {
		if data, err = level.Compress(data); err != nil {
			return fmt.Errorf("failed to compress level: %w", err)
		}
	}
	return writeFile(outPath, data)
}
