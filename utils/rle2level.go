package utils

import "github.com/voxelsplace/binmesh/api"

// RunRLEToLevel writes a textual RLE chunk as a single-chunk level file.
func RunRLEToLevel(rleArg, outPath string) error {
	data, err := api.RLEToLevel(rleArg)
	if err != nil {
		return err
	}
	return writeFile(outPath, data)
}
