package utils

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter"

	"github.com/voxelsplace/binmesh/level"
)

// isRemote reports whether src names something go-getter has to download
// rather than a plain local path.
func isRemote(src string) bool {
	return strings.Contains(src, "://") || strings.Contains(src, "::")
}

// FetchLevel loads a level from a local path or from any source go-getter
// understands (http, s3, gcs, git with a //subpath, ...).
func FetchLevel(ctx context.Context, src string, log *slog.Logger) (*level.Level, error) {
	if !isRemote(src) {
		lvl, err := level.Load(src)
		if err != nil {
			return nil, fmt.Errorf("failed to load level %s: %w", src, err)
		}
		return lvl, nil
	}

	dir, err := os.MkdirTemp("", "binmesh-level-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	dst := filepath.Join(dir, "level")
	log.Info("downloading level", "src", src)
	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Mode: getter.ClientModeFile,
	}
	if err := client.Get(); err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", src, err)
	}
	lvl, err := level.Load(dst)
	if err != nil {
		return nil, fmt.Errorf("failed to load level %s: %w", src, err)
	}
	log.Debug("level downloaded", "src", src, "chunks", lvl.Len())
	return lvl, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
