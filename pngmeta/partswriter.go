package pngmeta

import (
	"encoding/binary"
	"io"
)

type Writer struct {
	w io.Writer
	n int64
}

// NewWriter writes the png signature to w.
func NewWriter(w io.Writer) (*Writer, error) {
	pw := &Writer{w: w}
	if err := pw.write(Signature[:]); err != nil {
		return nil, err
	}
	return pw, nil
}

func (w *Writer) WriteChunk(c Chunk) error {
	if err := binary.Write(w.w, binary.BigEndian, c.length); err != nil {
		return err
	}
	w.n += lengthSize
	if err := w.write(c.typ.b[:]); err != nil {
		return err
	}
	if err := w.write(c.data); err != nil {
		return err
	}
	if err := binary.Write(w.w, binary.BigEndian, c.crc); err != nil {
		return err
	}
	w.n += crcSize
	return nil
}

// Written reports the bytes written so far, signature included.
func (w *Writer) Written() int64 {
	return w.n
}

func (w *Writer) write(p []byte) error {
	n, err := w.w.Write(p)
	w.n += int64(n)
	return err
}
