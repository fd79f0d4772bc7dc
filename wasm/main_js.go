//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/voxelsplace/binmesh/api"
)

func bytesArg(v js.Value) []byte {
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf
}

func toUint8Array(out []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(out))
	js.CopyBytesToJS(arr, out)
	return arr
}

func rle2level(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing rle string")
	}
	out, err := api.RLEToLevel(args[0].String())
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toUint8Array(out)
}

func level2glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing level bytes")
	}
	out, err := api.LevelToGLB(bytesArg(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toUint8Array(out)
}

// level2quadpack takes the level bytes and an optional compress flag.
func level2quadpack(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing level bytes")
	}
	compress := len(args) > 1 && args[1].Truthy()
	out, err := api.LevelToQuadPack(bytesArg(args[0]), compress)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toUint8Array(out)
}

func quadpack2glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing quad pack bytes")
	}
	out, err := api.QuadPackToGLB(bytesArg(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return toUint8Array(out)
}

func levelStats(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing level bytes")
	}
	s, err := api.LevelStats(bytesArg(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	faces := make([]any, len(s.FaceQuads))
	for i, q := range s.FaceQuads {
		faces[i] = q
	}
	return js.ValueOf(map[string]any{
		"chunks":  s.Chunks,
		"shared":  s.Shared,
		"quads":   s.Quads,
		"faces":   faces,
		"visible": s.VisibleCells,
	})
}

func main() {
	js.Global().Set("rle2level", js.FuncOf(rle2level))
	js.Global().Set("level2glb", js.FuncOf(level2glb))
	js.Global().Set("level2quadpack", js.FuncOf(level2quadpack))
	js.Global().Set("quadpack2glb", js.FuncOf(quadpack2glb))
	js.Global().Set("levelStats", js.FuncOf(levelStats))
	select {}
}
