package xiff

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    Tag
		wantErr bool
	}{
		{"ascii", "RIFF", Tag{'R', 'I', 'F', 'F'}, false},
		{"raw bytes", "\x00\xff\x01\x7f", Tag{0x00, 0xff, 0x01, 0x7f}, false},
		{"too short", "ABC", Tag{}, true},
		{"too long", "ABCDE", Tag{}, true},
		{"empty", "", Tag{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewTag(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTag)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMustTagPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { MustTag("TOOLONG") })
	assert.NotPanics(t, func() { MustTag("TEST") })
}

func TestTagString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "WAVE", MustTag("WAVE").String())
	assert.Equal(t, "fmt ", MustTag("fmt ").String())
	assert.Equal(t, `"\x00\x01AB"`, Tag{0x00, 0x01, 'A', 'B'}.String())
}

func TestChunkEqual(t *testing.T) {
	t.Parallel()

	a := NewChunk(MustTag("DATA"), []byte{1, 2, 3})

	assert.True(t, a.Equal(NewChunk(MustTag("DATA"), []byte{1, 2, 3})))
	assert.False(t, a.Equal(NewChunk(MustTag("DATB"), []byte{1, 2, 3})))
	assert.False(t, a.Equal(NewChunk(MustTag("DATA"), []byte{1, 2})))
	assert.True(t, NewChunk(MustTag("NULL"), nil).Equal(NewChunk(MustTag("NULL"), []byte{})))
}

func TestChunkSizes(t *testing.T) {
	t.Parallel()

	c := NewChunk(MustTag("DATA"), make([]byte, 10))

	assert.Equal(t, 10, c.Size())
	assert.Equal(t, 18, c.FrameSize())
	assert.Equal(t, "DATA(10)", c.String())
	assert.NoError(t, c.Validate())
}

func TestCheckPayloadSize(t *testing.T) {
	t.Parallel()

	if strconv.IntSize < 64 {
		t.Skip("int cannot hold a length above the 32-bit size field")
	}

	limit := uint64(MaxPayloadSize)

	assert.NoError(t, checkPayloadSize(0))
	assert.NoError(t, checkPayloadSize(int(limit)))
	assert.ErrorIs(t, checkPayloadSize(int(limit+1)), ErrPayloadTooLarge)
	assert.ErrorIs(t, checkPayloadSize(-1), ErrPayloadTooLarge)
}
