// Package level reads and writes level files: a one-byte chunks-per-side
// count, a table of 12-byte little-endian entries (key, rle_begin, rle_len)
// and the concatenated RLE payloads. rle_begin is an absolute file offset.
package level

import (
	"bytes"
	"encoding/binary"
	"os"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/voxelsplace/binmesh/mesher"
)

const (
	headerSize = 1
	entrySize  = 12
)

var (
	ErrEmpty         = errors.New("level file is empty")
	ErrTruncated     = errors.New("level chunk table is truncated")
	ErrEntryBounds   = errors.New("level entry points outside the file")
	ErrChunkCount    = errors.New("chunk count does not match chunks per side")
	ErrPayloadTooBig = errors.New("level payload exceeds 4 GiB")
)

// Entry is one row of the chunk table.
type Entry struct {
	Key   uint32
	Begin uint32
	Len   uint32
}

// Coords unpacks the entry key.
func (e Entry) Coords() (x, y, z uint8) { return mesher.ParseChunkKey(e.Key) }

// Level is a parsed level file. Payloads alias the buffer it was parsed from.
type Level struct {
	ChunksPerSide uint8
	Entries       []Entry
	data          []byte
}

// Payload returns the RLE stream of entry i.
func (l *Level) Payload(i int) []byte {
	e := l.Entries[i]
	return l.data[e.Begin : e.Begin+e.Len]
}

// Digest is the xxhash64 of entry i's payload. Chunks with equal digests
// (and equal bytes) mesh to the same quads.
func (l *Level) Digest(i int) uint64 { return xxhash.Sum64(l.Payload(i)) }

func (l *Level) Len() int { return len(l.Entries) }

// Parse validates the header and the whole chunk table before returning, so
// no chunk is handed out from a malformed file.
func Parse(data []byte) (*Level, error) {
	if len(data) < headerSize {
		return nil, ErrEmpty
	}
	n := data[0]
	count := int(n) * int(n)
	tableEnd := headerSize + count*entrySize
	if len(data) < tableEnd {
		return nil, errors.Wrapf(ErrTruncated, "%d entries need %d bytes, file has %d", count, tableEnd, len(data))
	}

	r := bytes.NewReader(data[headerSize:tableEnd])
	entries := make([]Entry, count)
	if err := binary.Read(r, binary.LittleEndian, entries); err != nil {
		return nil, errors.Wrap(err, "reading chunk table")
	}
	for i, e := range entries {
		end := uint64(e.Begin) + uint64(e.Len)
		if end > uint64(len(data)) || (e.Len > 0 && uint64(e.Begin) < uint64(tableEnd)) {
			return nil, errors.Wrapf(ErrEntryBounds, "entry %d [%d, %d) in %d bytes", i, e.Begin, end, len(data))
		}
	}
	return &Level{ChunksPerSide: n, Entries: entries, data: data}, nil
}

// Load reads a level file from disk, inflating it first when it is a
// compressed .lvz.
func Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return ParseAny(data)
}

// ParseAny accepts either a raw or a compressed level.
func ParseAny(data []byte) (*Level, error) {
	if IsCompressed(data) {
		raw, err := Decompress(data)
		if err != nil {
			return nil, err
		}
		data = raw
	}
	return Parse(data)
}

// Chunk is one input to Encode.
type Chunk struct {
	Key uint32
	RLE []byte
}

// FlatStack assigns keys to n×n payloads in generation order: z outer, x
// inner, y always 0.
func FlatStack(n uint8, payloads [][]byte) []Chunk {
	chunks := make([]Chunk, 0, len(payloads))
	i := 0
	for cz := 0; cz < int(n); cz++ {
		for cx := 0; cx < int(n); cx++ {
			if i >= len(payloads) {
				return chunks
			}
			chunks = append(chunks, Chunk{Key: mesher.ChunkKey(uint8(cx), 0, uint8(cz)), RLE: payloads[i]})
			i++
		}
	}
	return chunks
}

// Encode lays out a level file. chunks must hold exactly n² entries.
func Encode(n uint8, chunks []Chunk) ([]byte, error) {
	if len(chunks) != int(n)*int(n) {
		return nil, errors.Wrapf(ErrChunkCount, "%d chunks for %d per side", len(chunks), n)
	}
	tableEnd := headerSize + len(chunks)*entrySize
	total := uint64(tableEnd)
	for _, c := range chunks {
		total += uint64(len(c.RLE))
	}
	if total > 1<<32-1 {
		return nil, ErrPayloadTooBig
	}

	var buf bytes.Buffer
	buf.Grow(int(total))
	buf.WriteByte(n)
	offset := uint32(tableEnd)
	for _, c := range chunks {
		e := Entry{Key: c.Key, Begin: offset, Len: uint32(len(c.RLE))}
		_ = binary.Write(&buf, binary.LittleEndian, e)
		offset += e.Len
	}
	for _, c := range chunks {
		_, _ = buf.Write(c.RLE)
	}
	return buf.Bytes(), nil
}

// Write encodes a level and saves it to path.
func Write(path string, n uint8, chunks []Chunk) error {
	data, err := Encode(n, chunks)
	if err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "writing %s", path)
}
