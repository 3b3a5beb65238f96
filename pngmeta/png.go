package pngmeta

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Signature opens every png stream.
var Signature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// IEND is the type of the chunk that ends a png stream.
const IEND = "IEND"

// Png is the ordered chunk sequence of one png file.
type Png struct {
	chunks []Chunk
}

// NewPng copies chunks, so later changes to the caller's slice do not reach
// the container.
func NewPng(chunks []Chunk) *Png {
	return &Png{chunks: slices.Clone(chunks)}
}

// ParsePng decodes a complete png buffer. The first malformed chunk aborts
// the parse with its error.
func ParsePng(b []byte) (*Png, error) {
	if len(b) < len(Signature) || !bytes.Equal(b[:len(Signature)], Signature[:]) {
		n := min(len(b), len(Signature))
		return nil, fmt.Errorf("%w: got % x", ErrInvalidSignature, b[:n])
	}
	p := &Png{}
	cursor := len(Signature)
	for cursor < len(b) {
		chunk, err := ChunkFromBytes(b[cursor:])
		if err != nil {
			return nil, fmt.Errorf("chunk %d at offset %d: %w", len(p.chunks), cursor, err)
		}
		p.chunks = append(p.chunks, chunk)
		cursor += chunk.Size()
	}
	return p, nil
}

// ReadPng walks r chunk by chunk until it ends on a chunk boundary. Nothing
// is returned unless the whole stream parses.
func ReadPng(r io.Reader) (*Png, error) {
	pr, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	p := &Png{}
	for {
		chunk, err := pr.Next()
		if errors.Is(err, io.EOF) {
			return p, nil
		}
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", len(p.chunks), err)
		}
		p.chunks = append(p.chunks, chunk)
	}
}

func (p *Png) AppendChunk(c Chunk) {
	p.chunks = append(p.chunks, c)
}

// InsertBeforeEnd places c in front of a trailing IEND chunk, or appends it
// when the sequence does not end with IEND.
func (p *Png) InsertBeforeEnd(c Chunk) {
	last := len(p.chunks) - 1
	if last < 0 || p.chunks[last].typ.String() != IEND {
		p.AppendChunk(c)
		return
	}
	iend := p.chunks[last]
	p.chunks = append(p.chunks[:last], c, iend)
}

// ChunkByType returns the first chunk whose type renders as typ.
func (p *Png) ChunkByType(typ string) (Chunk, bool) {
	i := p.indexOf(typ)
	if i < 0 {
		return Chunk{}, false
	}
	return p.chunks[i], true
}

// RemoveFirstChunk removes and returns the first chunk whose type renders as typ.
func (p *Png) RemoveFirstChunk(typ string) (Chunk, error) {
	i := p.indexOf(typ)
	if i < 0 {
		return Chunk{}, fmt.Errorf("%w: %q", ErrChunkNotFound, typ)
	}
	removed := p.chunks[i]
	p.chunks = append(p.chunks[:i], p.chunks[i+1:]...)
	return removed, nil
}

// Chunks is a view of the sequence; callers must not modify it.
func (p *Png) Chunks() []Chunk {
	return p.chunks
}

func (p *Png) Bytes() []byte {
	size := len(Signature)
	for _, c := range p.chunks {
		size += c.Size()
	}
	var buf bytes.Buffer
	buf.Grow(size)
	// bytes.Buffer writes never fail
	_, _ = p.WriteTo(&buf)
	return buf.Bytes()
}

func (p *Png) WriteTo(w io.Writer) (int64, error) {
	pw, err := NewWriter(w)
	if err != nil {
		return 0, err
	}
	for _, c := range p.chunks {
		if err := pw.WriteChunk(c); err != nil {
			return pw.Written(), err
		}
	}
	return pw.Written(), nil
}

func (p *Png) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Png {\n  Signature: % x\n  Chunks: %d\n}\n", Signature[:], len(p.chunks))
	for _, c := range p.chunks {
		sb.WriteString(c.String())
	}
	return sb.String()
}

func (p *Png) indexOf(typ string) int {
	for i, c := range p.chunks {
		if c.typ.String() == typ {
			return i
		}
	}
	return -1
}
