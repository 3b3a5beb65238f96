package pngmeta

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

// Reader walks the chunks of a png stream one at a time.
type Reader struct {
	r io.Reader
}

func NewReader(r io.Reader) (*Reader, error) {
	var sig [len(Signature)]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: stream shorter than signature", ErrInvalidSignature)
		}
		return nil, err
	}
	if sig != Signature {
		return nil, fmt.Errorf("%w: got % x", ErrInvalidSignature, sig[:])
	}
	return &Reader{r}, nil
}

// Next returns io.EOF once the stream ends on a chunk boundary.
func (r *Reader) Next() (Chunk, error) {
	var length uint32
	if err := binary.Read(r.r, binary.BigEndian, &length); err != nil {
		if errors.Is(err, io.EOF) {
			return Chunk{}, io.EOF
		}
		return Chunk{}, truncated("chunk length", err)
	}
	var rawTyp [4]byte
	if _, err := io.ReadFull(r.r, rawTyp[:]); err != nil {
		return Chunk{}, truncated("chunk type", err)
	}
	typ := ChunkTypeFromBytes(rawTyp)
	checksummer := crc32.NewIEEE()
	checksummer.Write(rawTyp[:])
	var data bytes.Buffer
	n, err := io.Copy(&data, io.TeeReader(io.LimitReader(r.r, int64(length)), checksummer))
	if err != nil {
		return Chunk{}, err
	}
	if n != int64(length) {
		return Chunk{}, fmt.Errorf("%w: %q declares %d data bytes, only %d available", ErrTruncated, rawTyp[:], length, n)
	}
	var crc uint32
	if err := binary.Read(r.r, binary.BigEndian, &crc); err != nil {
		return Chunk{}, truncated("chunk crc", err)
	}
	if crc != checksummer.Sum32() {
		return Chunk{}, fmt.Errorf("%w: %q stored %08x, computed %08x", ErrCRCMismatch, rawTyp[:], crc, checksummer.Sum32())
	}
	if !typ.IsValid() {
		return Chunk{}, fmt.Errorf("%w: %q", ErrInvalidChunkType, rawTyp[:])
	}
	return Chunk{length: length, typ: typ, data: data.Bytes(), crc: crc}, nil
}

func truncated(field string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: reading %s", ErrTruncated, field)
	}
	return err
}
