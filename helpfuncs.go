package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pngme/models"
	"pngme/pngmeta"
)

func readPng(fpath string) (*pngmeta.Png, error) {
	data, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}
	p, err := pngmeta.ParsePng(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fpath, err)
	}
	logger.Debug("parsed png", "file", fpath, "chunks", len(p.Chunks()), "bytes", len(data))
	return p, nil
}

// writePng replaces fpath through a temp file in the same directory, so a
// failed write leaves the previous content in place.
func writePng(p *pngmeta.Png, fpath string) error {
	perm, err := cfg.Perm()
	if err != nil {
		return err
	}
	if info, err := os.Stat(fpath); err == nil {
		perm = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	dir, base := filepath.Split(fpath)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename
	n, err := p.WriteTo(tmp)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", fpath, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, fpath); err != nil {
		return err
	}
	logger.Debug("wrote png", "file", fpath, "bytes", n)
	return nil
}

// recordOp never fails the command; history is best effort.
func recordOp(op string, fpath string, chunk pngmeta.Chunk, sealed bool) {
	abs, err := filepath.Abs(fpath)
	if err != nil {
		abs = fpath
	}
	_, err = store.RecordOperation(&models.Operation{
		Op:         op,
		FilePath:   abs,
		ChunkType:  chunk.Type().String(),
		DataLength: chunk.Length(),
		CRC:        chunk.CRC(),
		Sealed:     sealed,
	})
	if err != nil {
		logger.Warn("failed to record operation", "op", op, "file", fpath, "error", err)
	}
}

// flags renders one letter per property bit: Critical or ancillary, Public or
// private, reserved ok (-) or set (!), safe (s) or unsafe (u) to copy.
func flags(ct pngmeta.ChunkType) string {
	var sb strings.Builder
	pick := func(ok bool, yes, no byte) {
		if ok {
			sb.WriteByte(yes)
		} else {
			sb.WriteByte(no)
		}
	}
	pick(ct.IsCritical(), 'C', 'a')
	pick(ct.IsPublic(), 'P', 'p')
	pick(ct.IsReservedBitValid(), '-', '!')
	pick(ct.IsSafeToCopy(), 's', 'u')
	return sb.String()
}
