// Package xiff holds the data model shared by the IFF frame codec.
//
// A stream is a plain concatenation of frames:
//
//	offset 0 : 4 bytes  tag
//	offset 4 : 4 bytes  payload length, uint32 LITTLE-endian
//	offset 8 : N bytes  payload
//
// The length field is little-endian. EA IFF-85 and RIFF readers expect
// big-endian sizes, so files written here are not readable by them as-is.
package xiff

import (
	"bytes"
	"math"
	"strconv"

	"github.com/go-pantheon/fabrica-util/errors"
)

const (
	TagSize       = 4
	SizeFieldSize = 4
	HeaderSize    = TagSize + SizeFieldSize

	// MaxPayloadSize is the largest payload the 32-bit size field can describe.
	MaxPayloadSize = math.MaxUint32
)

var (
	ErrInvalidTag      = errors.New("tag must be exactly 4 bytes")
	ErrPayloadTooLarge = errors.New("payload exceeds 32-bit size field")
)

// Tag is the four raw bytes identifying a chunk. It is opaque to the codec
// and is not required to be printable.
type Tag [TagSize]byte

func NewTag(s string) (Tag, error) {
	var t Tag

	if len(s) != TagSize {
		return t, errors.Wrapf(ErrInvalidTag, "got %d bytes", len(s))
	}

	copy(t[:], s)

	return t, nil
}

func MustTag(s string) Tag {
	t, err := NewTag(s)
	if err != nil {
		panic(err)
	}

	return t
}

// String renders printable ASCII tags verbatim and quotes anything else.
func (t Tag) String() string {
	for _, b := range t {
		if b < 0x20 || b > 0x7e {
			return strconv.QuoteToASCII(string(t[:]))
		}
	}

	return string(t[:])
}

// Chunk is one framed unit. It is a value: the decoder hands over a freshly
// allocated payload and keeps no reference to it.
type Chunk struct {
	Tag     Tag
	Payload []byte
}

func NewChunk(tag Tag, payload []byte) Chunk {
	return Chunk{Tag: tag, Payload: payload}
}

// Size returns the payload length.
func (c Chunk) Size() int {
	return len(c.Payload)
}

// FrameSize returns the number of bytes the chunk occupies on the wire.
func (c Chunk) FrameSize() int {
	return HeaderSize + len(c.Payload)
}

// Equal reports whether both chunks carry the same tag and payload bytes.
// A nil payload equals an empty one.
func (c Chunk) Equal(other Chunk) bool {
	return c.Tag == other.Tag && bytes.Equal(c.Payload, other.Payload)
}

// Validate reports ErrPayloadTooLarge when the payload length does not fit
// the 32-bit size field.
func (c Chunk) Validate() error {
	if err := checkPayloadSize(len(c.Payload)); err != nil {
		return errors.Wrapf(err, "tag=%s", c.Tag)
	}

	return nil
}

func checkPayloadSize(n int) error {
	if n < 0 || uint64(n) > MaxPayloadSize {
		return errors.Wrapf(ErrPayloadTooLarge, "size=%d", n)
	}

	return nil
}

func (c Chunk) String() string {
	return c.Tag.String() + "(" + strconv.Itoa(len(c.Payload)) + ")"
}
