package utils

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/voxelsplace/binmesh/level"
)

// RunCompressLevel wraps a raw level in zstd (.lvz). The input is parsed
// first so a broken level is never compressed.
func RunCompressLevel(inPath, outPath string, log *slog.Logger) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	if level.IsCompressed(data) {
		return fmt.Errorf("%s is already compressed", inPath)
	}
	if _, err := level.Parse(data); err != nil {
		return fmt.Errorf("invalid level %s: %w", inPath, err)
	}
	out, err := level.Compress(data)
	if err != nil {
		return fmt.Errorf("failed to compress: %w", err)
	}
	if err := writeFile(outPath, out); err != nil {
		return err
	}
	log.Info("level compressed", "path", outPath, "in", len(data), "out", len(out))
	return nil
}

// RunDecompressLevel inflates a .lvz back to a raw level file.
func RunDecompressLevel(inPath, outPath string, log *slog.Logger) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	raw, err := level.Decompress(data)
	if err != nil {
		return fmt.Errorf("failed to decompress %s: %w", inPath, err)
	}
	if _, err := level.Parse(raw); err != nil {
		return fmt.Errorf("invalid level inside %s: %w", inPath, err)
	}
	if err := writeFile(outPath, raw); err != nil {
		return err
	}
	log.Info("level decompressed", "path", outPath, "in", len(data), "out", len(raw))
	return nil
}
