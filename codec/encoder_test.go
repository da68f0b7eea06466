package codec

import (
	"bytes"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/go-pantheon/fabrica-iff/frame"
	"github.com/go-pantheon/fabrica-iff/xiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeOne(t *testing.T, c xiff.Chunk) []byte {
	t.Helper()

	var buf bytes.Buffer

	_, err := NewEncoder(&buf, quiet).Append(c)
	require.NoError(t, err)

	return buf.Bytes()
}

func TestEncodeLayout(t *testing.T) {
	t.Parallel()

	got := encodeOne(t, xiff.NewChunk(xiff.MustTag("BBBB"), []byte{0x01, 0x02}))
	assert.Equal(t, frameBytes("BBBB", 2, []byte{0x01, 0x02}), got)

	got = encodeOne(t, xiff.NewChunk(xiff.MustTag("TEST"), nil))
	assert.Equal(t, []byte("TEST\x00\x00\x00\x00"), got)
}

func TestEncodeChained(t *testing.T) {
	t.Parallel()

	a := xiff.NewChunk(xiff.MustTag("AAAA"), nil)
	b := xiff.NewChunk(xiff.MustTag("BBBB"), []byte{0x01, 0x02})
	c := xiff.NewChunk(xiff.MustTag("CCCC"), []byte("third"))

	var buf bytes.Buffer

	enc := NewEncoder(&buf, quiet)

	enc, err := enc.Append(a)
	require.NoError(t, err)
	enc, err = enc.Append(b)
	require.NoError(t, err)
	_, err = enc.Append(c)
	require.NoError(t, err)

	want := append(append(encodeOne(t, a), encodeOne(t, b)...), encodeOne(t, c)...)
	assert.Equal(t, want, buf.Bytes())

	var all bytes.Buffer
	_, err = NewEncoder(&all, quiet).AppendAll(a, b, c)
	require.NoError(t, err)
	assert.Equal(t, want, all.Bytes())
}

func TestEncodeReturnsSameEncoder(t *testing.T) {
	t.Parallel()

	enc := NewEncoder(io.Discard, quiet)

	got, err := enc.Append(xiff.NewChunk(xiff.MustTag("SAME"), nil))
	require.NoError(t, err)
	assert.Same(t, enc, got)
}

type failWriter struct {
	err     error
	written int
}

func (w *failWriter) Write(p []byte) (int, error) {
	w.written += len(p)
	return 0, w.err
}

func TestEncodeWriteFailure(t *testing.T) {
	t.Parallel()

	w := &failWriter{err: io.ErrClosedPipe}
	enc := NewEncoder(w, quiet)

	got, err := enc.Append(xiff.NewChunk(xiff.MustTag("DATA"), []byte("x")))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.Nil(t, got)

	assert.ErrorIs(t, enc.Encode(xiff.NewChunk(xiff.MustTag("DATA"), nil)), io.ErrClosedPipe)
}

func TestEncodeAppendAllStopsAtFailure(t *testing.T) {
	t.Parallel()

	w := &failWriter{err: io.ErrShortWrite}

	_, err := NewEncoder(w, quiet).AppendAll(
		xiff.NewChunk(xiff.MustTag("AAAA"), nil),
		xiff.NewChunk(xiff.MustTag("BBBB"), nil),
	)
	assert.ErrorIs(t, err, io.ErrShortWrite)
	// only the tag of the first frame was offered to the sink
	assert.Equal(t, xiff.TagSize, w.written)
}

func TestEncodeShortWrite(t *testing.T) {
	t.Parallel()

	_, err := NewEncoder(halfWriter{}, quiet).Append(xiff.NewChunk(xiff.MustTag("DATA"), []byte("payload")))
	assert.ErrorIs(t, err, frame.ErrShortWrite)
}

type halfWriter struct{}

func (halfWriter) Write(p []byte) (int, error) {
	return len(p) / 2, nil
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))

	sizes := []int{0, 1, 7, 8, 255, 256, 4095, 4096, 65537, 1 << 20}

	for _, size := range sizes {
		var tag xiff.Tag
		for i := range tag {
			tag[i] = byte(rng.UintN(256))
		}

		payload := make([]byte, size)
		for i := range payload {
			payload[i] = byte(rng.UintN(256))
		}

		want := xiff.NewChunk(tag, payload)

		d := NewDecoder(bytes.NewReader(encodeOne(t, want)), quiet)

		got, ok := d.Next()
		require.True(t, ok, "size %d", size)
		assert.Equal(t, want.Tag, got.Tag)
		assert.True(t, want.Equal(got), "size %d", size)

		_, ok = d.Next()
		assert.False(t, ok)
	}
}

func BenchmarkEncodeDecode(b *testing.B) {
	chunk := xiff.NewChunk(xiff.MustTag("DATA"), make([]byte, 512))

	var buf bytes.Buffer

	enc := NewEncoder(&buf, quiet)

	b.ResetTimer()

	for range b.N {
		buf.Reset()

		if _, err := enc.Append(chunk); err != nil {
			b.Fatal(err)
		}

		if _, ok := NewDecoder(bytes.NewReader(buf.Bytes()), quiet).Next(); !ok {
			b.Fatal("decode failed")
		}
	}
}
