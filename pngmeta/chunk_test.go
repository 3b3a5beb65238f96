package pngmeta

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"
	"testing"
)

const testMessage = "This is where your secret message will be!"

func rawChunk(length uint32, typ string, data []byte, crc uint32) []byte {
	out := binary.BigEndian.AppendUint32(nil, length)
	out = append(out, typ...)
	out = append(out, data...)
	return binary.BigEndian.AppendUint32(out, crc)
}

func testingChunk(t *testing.T) Chunk {
	t.Helper()
	chunk, err := ChunkFromBytes(rawChunk(42, "RuSt", []byte(testMessage), 2882656334))
	if err != nil {
		t.Fatalf("failed to build testing chunk: %v", err)
	}
	return chunk
}

func TestCRCCheckValue(t *testing.T) {
	if got := crc32.ChecksumIEEE([]byte("123456789")); got != 0xCBF43926 {
		t.Fatalf("expected check value 0xCBF43926, got %#x", got)
	}
}

func TestNewChunk(t *testing.T) {
	ct, err := ParseChunkType("RuSt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	chunk := NewChunk(ct, []byte(testMessage))
	if chunk.Length() != 42 {
		t.Errorf("expected length 42, got %d", chunk.Length())
	}
	if chunk.CRC() != 2882656334 {
		t.Errorf("expected crc 2882656334, got %d", chunk.CRC())
	}
	if !chunk.equal(testingChunk(t)) {
		t.Errorf("expected new chunk to equal parsed chunk")
	}
}

func TestValidChunkFromBytes(t *testing.T) {
	chunk := testingChunk(t)
	if chunk.Length() != 42 {
		t.Errorf("expected length 42, got %d", chunk.Length())
	}
	if chunk.Type().String() != "RuSt" {
		t.Errorf("expected type RuSt, got %s", chunk.Type())
	}
	text, err := chunk.DataAsString()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != testMessage {
		t.Errorf("expected %q, got %q", testMessage, text)
	}
	if chunk.CRC() != 2882656334 {
		t.Errorf("expected crc 2882656334, got %d", chunk.CRC())
	}
	if chunk.Size() != 54 {
		t.Errorf("expected on-wire size 54, got %d", chunk.Size())
	}
}

func TestChunkFromBytesErrors(t *testing.T) {
	good := rawChunk(42, "RuSt", []byte(testMessage), 2882656334)
	badType := NewChunk(ChunkTypeFromBytes([4]byte{'R', 'u', '1', 't'}), []byte("x")).Bytes()
	cases := []struct {
		name  string
		input []byte
		want  error
	}{
		{"wrong crc", rawChunk(42, "RuSt", []byte(testMessage), 2882656333), ErrCRCMismatch},
		{"corrupt crc byte", append(append([]byte{}, good[:len(good)-1]...), good[len(good)-1]^0xff), ErrCRCMismatch},
		{"empty", nil, ErrTruncated},
		{"shorter than header", good[:7], ErrTruncated},
		{"missing data", good[:20], ErrTruncated},
		{"missing crc byte", good[:len(good)-1], ErrTruncated},
		{"huge length", rawChunk(0xffffffff, "RuSt", nil, 0), ErrTruncated},
		{"non alphabetic type", badType, ErrInvalidChunkType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ChunkFromBytes(tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestChunkFromBytesIgnoresTrailing(t *testing.T) {
	raw := append(rawChunk(42, "RuSt", []byte(testMessage), 2882656334), "trailing"...)
	chunk, err := ChunkFromBytes(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(chunk.Bytes(), raw[:chunk.Size()]) {
		t.Errorf("expected re-serialized chunk to match the prefix")
	}
}

func TestChunkBytes(t *testing.T) {
	raw := rawChunk(42, "RuSt", []byte(testMessage), 2882656334)
	chunk := testingChunk(t)
	if !bytes.Equal(chunk.Bytes(), raw) {
		t.Errorf("expected %x, got %x", raw, chunk.Bytes())
	}
}

func TestChunkDataAsStringInvalid(t *testing.T) {
	ct, _ := ParseChunkType("biNa")
	chunk := NewChunk(ct, []byte{0xff, 0xfe, 0x00})
	if _, err := chunk.DataAsString(); !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
	if chunk.Preview() != "fffe00" {
		t.Errorf("expected hex preview, got %q", chunk.Preview())
	}
}

func TestChunkString(t *testing.T) {
	out := fmt.Sprint(testingChunk(t))
	for _, want := range []string{"Length: 42", "Type: RuSt", "Data: " + testMessage, "Crc: 2882656334"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestEmptyChunk(t *testing.T) {
	ct, _ := ParseChunkType("IEND")
	chunk := NewChunk(ct, nil)
	// the well known IEND trailer
	want := []byte{0, 0, 0, 0, 'I', 'E', 'N', 'D', 0xae, 0x42, 0x60, 0x82}
	if !bytes.Equal(chunk.Bytes(), want) {
		t.Fatalf("expected %x, got %x", want, chunk.Bytes())
	}
	parsed, err := ChunkFromBytes(want)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !parsed.equal(chunk) {
		t.Errorf("expected parsed IEND to equal the built one")
	}
}

func TestChunkOwnsData(t *testing.T) {
	ct, _ := ParseChunkType("ruSt")
	payload := []byte("hello")
	chunk := NewChunk(ct, payload)
	payload[0] = 'J'
	if string(chunk.Data()) != "hello" {
		t.Errorf("changing the source buffer reached the chunk: %q", chunk.Data())
	}
	view := chunk.Data()
	view[0] = 'Y'
	if string(chunk.Data()) != "hello" {
		t.Errorf("changing Data() reached the chunk: %q", chunk.Data())
	}
	if _, err := ChunkFromBytes(chunk.Bytes()); err != nil {
		t.Fatalf("chunk no longer matches its crc: %v", err)
	}
}
