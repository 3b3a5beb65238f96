package pngmeta

import "fmt"

// property bit shared by all four bytes of a chunk type
const propertyBit = 1 << 5

// ChunkType is the 4 byte tag naming a chunk, e.g. IHDR or tEXt.
type ChunkType struct {
	b [4]byte
}

// ChunkTypeFromBytes never fails; use IsValid to check the bytes.
func ChunkTypeFromBytes(b [4]byte) ChunkType {
	return ChunkType{b: b}
}

// ParseChunkType accepts exactly 4 ASCII letters.
func ParseChunkType(s string) (ChunkType, error) {
	if len(s) != 4 {
		return ChunkType{}, fmt.Errorf("%w: %q must be 4 bytes, got %d", ErrInvalidFormat, s, len(s))
	}
	var b [4]byte
	copy(b[:], s)
	ct := ChunkType{b: b}
	if !ct.IsValid() {
		return ChunkType{}, fmt.Errorf("%w: %q must be ascii letters only", ErrInvalidFormat, s)
	}
	return ct, nil
}

func (c ChunkType) Bytes() [4]byte {
	return c.b
}

func (c ChunkType) IsValid() bool {
	for _, b := range c.b {
		if !isASCIILetter(b) {
			return false
		}
	}
	return true
}

// IsCritical reports an uppercase first byte.
func (c ChunkType) IsCritical() bool {
	return c.b[0]&propertyBit == 0
}

// IsPublic reports an uppercase second byte.
func (c ChunkType) IsPublic() bool {
	return c.b[1]&propertyBit == 0
}

// IsReservedBitValid reports an uppercase third byte.
func (c ChunkType) IsReservedBitValid() bool {
	return c.b[2]&propertyBit == 0
}

// IsSafeToCopy reports a lowercase fourth byte.
func (c ChunkType) IsSafeToCopy() bool {
	return c.b[3]&propertyBit != 0
}

// String renders the 4 bytes; the zero ChunkType renders as "".
func (c ChunkType) String() string {
	if c == (ChunkType{}) {
		return ""
	}
	return string(c.b[:])
}

// MarshalText and UnmarshalText carry the type as its 4 letters in JSON.
func (c ChunkType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ChunkType) UnmarshalText(text []byte) error {
	ct, err := ParseChunkType(string(text))
	if err != nil {
		return err
	}
	*c = ct
	return nil
}

// Set and Type let a ChunkType be used directly as a command line flag.
func (c *ChunkType) Set(s string) error {
	return c.UnmarshalText([]byte(s))
}

func (c *ChunkType) Type() string {
	return "chunktype"
}

func isASCIILetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
