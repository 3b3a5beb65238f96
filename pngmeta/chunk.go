package pngmeta

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"strings"
	"unicode/utf8"
)

const (
	lengthSize = 4
	typeSize   = 4
	crcSize    = 4
	// bytes a chunk occupies on the wire besides its data
	chunkOverhead = lengthSize + typeSize + crcSize
	previewBytes  = 32
)

// Chunk is one length-type-data-crc record of a png stream.
type Chunk struct {
	length uint32
	typ    ChunkType
	data   []byte
	crc    uint32
}

// NewChunk computes length and crc for data under chunk type t. The chunk
// keeps its own copy of data.
func NewChunk(t ChunkType, data []byte) Chunk {
	data = bytes.Clone(data)
	return Chunk{
		length: uint32(len(data)),
		typ:    t,
		data:   data,
		crc:    checksum(t, data),
	}
}

// ChunkFromBytes decodes the chunk at the start of b and verifies its crc.
// Bytes following the crc are ignored.
func ChunkFromBytes(b []byte) (Chunk, error) {
	if len(b) < chunkOverhead {
		return Chunk{}, fmt.Errorf("%w: chunk needs at least %d bytes, got %d", ErrTruncated, chunkOverhead, len(b))
	}
	length := binary.BigEndian.Uint32(b[:lengthSize])
	var rawTyp [4]byte
	copy(rawTyp[:], b[lengthSize:lengthSize+typeSize])
	typ := ChunkTypeFromBytes(rawTyp)
	// compare in uint64 so a huge declared length cannot overflow int
	if uint64(len(b)) < uint64(length)+chunkOverhead {
		return Chunk{}, fmt.Errorf("%w: %q declares %d data bytes, only %d available",
			ErrTruncated, rawTyp[:], length, len(b)-chunkOverhead)
	}
	dataStart := lengthSize + typeSize
	dataEnd := dataStart + int(length)
	data := make([]byte, length)
	copy(data, b[dataStart:dataEnd])
	crc := binary.BigEndian.Uint32(b[dataEnd : dataEnd+crcSize])
	if want := checksum(typ, data); want != crc {
		return Chunk{}, fmt.Errorf("%w: %q stored %08x, computed %08x", ErrCRCMismatch, rawTyp[:], crc, want)
	}
	if !typ.IsValid() {
		return Chunk{}, fmt.Errorf("%w: %q", ErrInvalidChunkType, rawTyp[:])
	}
	return Chunk{length: length, typ: typ, data: data, crc: crc}, nil
}

func (c Chunk) Length() uint32 {
	return c.length
}

func (c Chunk) Type() ChunkType {
	return c.typ
}

// Data returns a copy of the payload.
func (c Chunk) Data() []byte {
	return bytes.Clone(c.data)
}

func (c Chunk) CRC() uint32 {
	return c.crc
}

// Size is the number of bytes the chunk occupies on the wire.
func (c Chunk) Size() int {
	return chunkOverhead + int(c.length)
}

func (c Chunk) DataAsString() (string, error) {
	if !utf8.Valid(c.data) {
		return "", fmt.Errorf("%w: %s chunk", ErrInvalidUTF8, c.typ)
	}
	return string(c.data), nil
}

// Bytes serializes the chunk as length, type, data and crc.
func (c Chunk) Bytes() []byte {
	out := make([]byte, 0, c.Size())
	out = binary.BigEndian.AppendUint32(out, c.length)
	out = append(out, c.typ.b[:]...)
	out = append(out, c.data...)
	return binary.BigEndian.AppendUint32(out, c.crc)
}

func (c Chunk) equal(other Chunk) bool {
	return c.length == other.length && c.typ == other.typ &&
		c.crc == other.crc && bytes.Equal(c.data, other.data)
}

// Preview renders the data as text when possible, otherwise as a short hex dump.
func (c Chunk) Preview() string {
	if text, err := c.DataAsString(); err == nil {
		return text
	}
	if len(c.data) > previewBytes {
		return hex.EncodeToString(c.data[:previewBytes]) + "..."
	}
	return hex.EncodeToString(c.data)
}

func (c Chunk) String() string {
	var sb strings.Builder
	sb.WriteString("Chunk {\n")
	fmt.Fprintf(&sb, "  Length: %d\n", c.length)
	fmt.Fprintf(&sb, "  Type: %s\n", c.typ)
	fmt.Fprintf(&sb, "  Data: %s\n", c.Preview())
	fmt.Fprintf(&sb, "  Crc: %d\n", c.crc)
	sb.WriteString("}\n")
	return sb.String()
}

// checksum is the IEEE crc32 (reflected 0x04C11DB7) over type and data.
func checksum(t ChunkType, data []byte) uint32 {
	checksummer := crc32.NewIEEE()
	checksummer.Write(t.b[:])
	checksummer.Write(data)
	return checksummer.Sum32()
}
