//go:build !(js && wasm)

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/voxelsplace/binmesh/pipeline"
	"github.com/voxelsplace/binmesh/quadpack"
	"github.com/voxelsplace/binmesh/utils"
)

func usage() {
	fmt.Println("Usage: binmesh <command> [flags] [args]")
	fmt.Println("Commands:")
	fmt.Println("  mesh [-zstd] <level> <output.quadpack>    (mesh a level into a quad buffer + draw commands)")
	fmt.Println("  glb <level> <output.glb>                  (mesh a level and export .glb, one node per chunk)")
	fmt.Println("  stats <level>                             (mesh a level and log per-chunk quad counts)")
	fmt.Println("  quadpack2glb <input.quadpack> <output.glb> (export a quad pack without re-meshing)")
	fmt.Println("  compress <input.lvl> <output.lvz>         (zstd-compress a level)")
	fmt.Println("  decompress <input.lvz> <output.lvl>       (inflate a compressed level)")
	fmt.Println("  gennoise [-n 4] [-min 5] [-max 40] [-seed 1] [-zstd] <output>   (generate a random level)")
	fmt.Println("  rle2level <rle> <output.lvl>              (wrap one textual RLE chunk as a level)")
	fmt.Println("<level> may be a local path or any go-getter source (https://..., s3::..., git::...).")
	fmt.Println("Every command accepts -v for debug logging.")
}

// meshFlags registers the pipeline settings on fs.
func meshFlags(fs *flag.FlagSet) *pipeline.Config {
	cfg := pipeline.DefaultConfig()
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent chunk jobs")
	fs.IntVar(&cfg.InitialQuads, "quads", cfg.InitialQuads, "initial quad capacity per worker")
	fs.BoolVar(&cfg.Dedupe, "dedupe", cfg.Dedupe, "mesh identical chunk payloads once")
	fs.IntVar(&cfg.ArenaBytes, "arena", cfg.ArenaBytes, "quad buffer limit in bytes")
	return cfg
}

func fail(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	verbose := fs.Bool("v", false, "debug logging")

	var (
		cfg      *pipeline.Config
		zstd     *bool
		n        *int
		minP     *float64
		maxP     *float64
		seed     *int64
		wantArgs int
	)
	switch cmd {
	case "mesh":
		cfg = meshFlags(fs)
		zstd = fs.Bool("zstd", false, "zstd-compress the quad pack")
		wantArgs = 2
	case "glb":
		cfg = meshFlags(fs)
		wantArgs = 2
	case "stats":
		cfg = meshFlags(fs)
		wantArgs = 1
	case "quadpack2glb", "compress", "decompress", "rle2level":
		wantArgs = 2
	case "gennoise":
		n = fs.Int("n", 4, "chunks per side")
		minP = fs.Float64("min", 5, "minimum fill percentage per chunk")
		maxP = fs.Float64("max", 40, "maximum fill percentage per chunk")
		seed = fs.Int64("seed", 1, "generator seed")
		zstd = fs.Bool("zstd", false, "zstd-compress the level")
		wantArgs = 1
	default:
		usage()
		os.Exit(1)
	}
	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(1)
	}
	args := fs.Args()
	if len(args) != wantArgs {
		usage()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch cmd {
	case "mesh":
		comp := quadpack.CompNone
		if *zstd {
			comp = quadpack.CompZstd
		}
		err = utils.RunMeshLevel(ctx, args[0], args[1], cfg, comp, log)
	case "glb":
		err = utils.RunLevelToGLB(ctx, args[0], args[1], cfg, log)
	case "stats":
		_, err = utils.RunLevelStats(ctx, args[0], cfg, log)
	case "quadpack2glb":
		err = utils.RunQuadPackToGLB(args[0], args[1], log)
	case "compress":
		err = utils.RunCompressLevel(args[0], args[1], log)
	case "decompress":
		err = utils.RunDecompressLevel(args[0], args[1], log)
	case "gennoise":
		err = utils.RunGenerateNoiseLevel(*n, *minP, *maxP, *seed, *zstd, args[0])
	case "rle2level":
		err = utils.RunRLEToLevel(args[0], args[1])
	}
	if err != nil {
		cancel()
		fail(log, cmd+" failed", err)
	}
	log.Info("operation completed", "command", cmd)
}
