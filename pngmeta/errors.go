package pngmeta

import "errors"

var (
	ErrInvalidFormat    = errors.New("invalid chunk type format")
	ErrInvalidChunkType = errors.New("invalid chunk type")
	ErrTruncated        = errors.New("truncated")
	ErrInvalidSignature = errors.New("not png")
	ErrCRCMismatch      = errors.New("crc32 mismatch")
	ErrChunkNotFound    = errors.New("chunk not found")
	ErrInvalidUTF8      = errors.New("chunk data is not valid utf-8")
)
