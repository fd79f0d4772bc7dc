package quadpack

import (
	"bytes"
	"encoding/binary"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/voxelsplace/binmesh/mesher"
)

// Compression selects how the content section of a pack is stored.
type Compression uint8

const (
	CompNone Compression = 0
	CompZstd Compression = 1
)

func (c Compression) String() string {
	switch c {
	case CompNone:
		return "none"
	case CompZstd:
		return "zstd"
	}
	return "unknown"
}

const (
	packMagic   = "QUADPACK"
	packVersion = 1
	// magic, version, compression, xxhash64 of the raw content
	packHeaderSize = 8 + 1 + 1 + 8
)

var (
	ErrNotPack     = errors.New("not a quad pack")
	ErrVersion     = errors.New("unsupported quad pack version")
	ErrCompression = errors.New("unsupported quad pack compression")
	ErrChecksum    = errors.New("quad pack checksum mismatch")
	ErrCorrupt     = errors.New("quad pack content is inconsistent")
)

// Pack is a pre-meshed level: the arena contents plus the level geometry
// needed to place chunks.
type Pack struct {
	ChunksPerSide uint8
	CS            uint8
	Quads         []mesher.Quad
	Commands      []DrawCommand
}

// FromArena snapshots an arena. The pack aliases the arena's slices.
func FromArena(chunksPerSide uint8, cs int, a *Arena) *Pack {
	return &Pack{ChunksPerSide: chunksPerSide, CS: uint8(cs), Quads: a.Quads(), Commands: a.Commands()}
}

// Arena rebuilds an arena holding the pack's quads and commands.
func (p *Pack) Arena() *Arena {
	limit := DefaultArenaBytes
	if n := len(p.Quads) * QuadBytes; n > limit {
		limit = n
	}
	return &Arena{limit: limit, quads: p.Quads, commands: p.Commands}
}

// Marshal encodes the pack with the given compression.
func (p *Pack) Marshal(comp Compression) ([]byte, error) {
	var content bytes.Buffer
	content.Grow(10 + len(p.Quads)*QuadBytes + len(p.Commands)*20)
	_ = binary.Write(&content, binary.LittleEndian, p.ChunksPerSide)
	_ = binary.Write(&content, binary.LittleEndian, p.CS)
	_ = binary.Write(&content, binary.LittleEndian, uint32(len(p.Quads)))
	_ = binary.Write(&content, binary.LittleEndian, p.Quads)
	_ = binary.Write(&content, binary.LittleEndian, uint32(len(p.Commands)))
	_ = binary.Write(&content, binary.LittleEndian, p.Commands)

	raw := content.Bytes()
	sum := xxhash.Sum64(raw)

	var body []byte
	switch comp {
	case CompNone:
		body = raw
	case CompZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, errors.Wrap(err, "creating zstd encoder")
		}
		defer enc.Close()
		body = enc.EncodeAll(raw, nil)
	default:
		return nil, errors.Wrapf(ErrCompression, "%d", comp)
	}

	var out bytes.Buffer
	out.Grow(packHeaderSize + len(body))
	out.WriteString(packMagic)
	_ = binary.Write(&out, binary.LittleEndian, uint8(packVersion))
	_ = binary.Write(&out, binary.LittleEndian, uint8(comp))
	_ = binary.Write(&out, binary.LittleEndian, sum)
	_, _ = out.Write(body)
	return out.Bytes(), nil
}

// Unmarshal parses a pack and verifies its checksum and command ranges.
func Unmarshal(data []byte) (*Pack, Compression, error) {
	if len(data) < packHeaderSize || string(data[:8]) != packMagic {
		return nil, 0, ErrNotPack
	}
	if data[8] != packVersion {
		return nil, 0, errors.Wrapf(ErrVersion, "%d", data[8])
	}
	comp := Compression(data[9])
	sum := binary.LittleEndian.Uint64(data[10:18])
	raw := data[packHeaderSize:]

	switch comp {
	case CompNone:
	case CompZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, 0, errors.Wrap(err, "creating zstd decoder")
		}
		defer dec.Close()
		raw, err = dec.DecodeAll(raw, nil)
		if err != nil {
			return nil, 0, errors.Wrap(err, "inflating quad pack")
		}
	default:
		return nil, 0, errors.Wrapf(ErrCompression, "%d", comp)
	}
	if xxhash.Sum64(raw) != sum {
		return nil, 0, ErrChecksum
	}

	r := bytes.NewReader(raw)
	p := &Pack{}
	if err := binary.Read(r, binary.LittleEndian, &p.ChunksPerSide); err != nil {
		return nil, 0, errors.Wrap(ErrCorrupt, "chunks per side")
	}
	if err := binary.Read(r, binary.LittleEndian, &p.CS); err != nil {
		return nil, 0, errors.Wrap(ErrCorrupt, "chunk side")
	}

	var nQuads uint32
	if err := binary.Read(r, binary.LittleEndian, &nQuads); err != nil {
		return nil, 0, errors.Wrap(ErrCorrupt, "quad count")
	}
	if uint64(nQuads)*QuadBytes > uint64(r.Len()) {
		return nil, 0, errors.Wrapf(ErrCorrupt, "%d quads in %d bytes", nQuads, r.Len())
	}
	p.Quads = make([]mesher.Quad, nQuads)
	if err := binary.Read(r, binary.LittleEndian, p.Quads); err != nil {
		return nil, 0, errors.Wrap(ErrCorrupt, "quads")
	}

	var nCommands uint32
	if err := binary.Read(r, binary.LittleEndian, &nCommands); err != nil {
		return nil, 0, errors.Wrap(ErrCorrupt, "command count")
	}
	if uint64(nCommands)*20 != uint64(r.Len()) {
		return nil, 0, errors.Wrapf(ErrCorrupt, "%d commands in %d bytes", nCommands, r.Len())
	}
	p.Commands = make([]DrawCommand, nCommands)
	if err := binary.Read(r, binary.LittleEndian, p.Commands); err != nil {
		return nil, 0, errors.Wrap(ErrCorrupt, "commands")
	}
	for i, c := range p.Commands {
		if c.Face() >= mesher.FaceCount || c.IndexCount%6 != 0 || c.BaseVertex&3 != 0 || c.FirstQuad()+c.QuadCount() > len(p.Quads) {
			return nil, 0, errors.Wrapf(ErrCorrupt, "command %d addresses quads outside the buffer", i)
		}
	}
	return p, comp, nil
}
