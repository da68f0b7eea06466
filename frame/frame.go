// Package frame reads and writes single IFF frames and reports exactly why
// a read stopped. The codec package builds its chunk sequence on top of it.
package frame

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"net"

	"github.com/go-pantheon/fabrica-iff/conf"
	"github.com/go-pantheon/fabrica-iff/internal/bufpool"
	"github.com/go-pantheon/fabrica-iff/xiff"
	"github.com/go-pantheon/fabrica-util/errors"
)

// payloadStep bounds how much payload memory is reserved ahead of the bytes
// read so far.
const payloadStep = 1 << 20

var (
	pool *bufpool.SyncPool

	ErrShortHeader         = errors.New("short frame header")
	ErrShortPayload        = errors.New("short frame payload")
	ErrShortWrite          = errors.New("short write")
	ErrPayloadExceedsLimit = errors.New("declared payload size exceeds limit")
)

func init() {
	if err := InitPool(conf.Default().Pool.Thresholds); err != nil {
		panic("failed to initialize frame payload pool: " + err.Error())
	}
}

// InitPool replaces the payload pool used by ReadPooled. It is not safe to
// call while pooled reads are in flight.
func InitPool(thresholds []int) error {
	p, err := bufpool.New(thresholds)
	if err != nil {
		return err
	}

	pool = p

	return nil
}

// Read decodes one frame from r. It returns io.EOF when r is exhausted
// exactly at a frame boundary, ErrShortHeader or ErrShortPayload when the
// stream ends mid-frame, and ErrPayloadExceedsLimit when the declared size
// is above limit. A declared size of zero yields an empty payload.
func Read(r io.Reader, limit uint32) (xiff.Chunk, error) {
	chunk, _, err := read(r, limit, heap{})
	if err != nil {
		return xiff.Chunk{}, err
	}

	return chunk, nil
}

// ReadPooled is Read with the payload taken from the package pool. The
// caller must call free once it no longer uses the payload.
func ReadPooled(r io.Reader, limit uint32) (chunk xiff.Chunk, free func(), err error) {
	return read(r, limit, pool)
}

// heap hands out buffers the caller keeps for good.
type heap struct{}

func (heap) Alloc(size int) []byte {
	return make([]byte, size)
}

func (heap) Free([]byte) {}

func read(r io.Reader, limit uint32, p bufpool.Pool) (chunk xiff.Chunk, free func(), err error) {
	tag, size, err := readHeader(r)
	if err != nil {
		recordDecodeError(err)
		return xiff.Chunk{}, nil, err
	}

	if size > limit || uint64(size) > math.MaxInt {
		decodeErrors.Add(1)
		return xiff.Chunk{}, nil, errors.Wrapf(ErrPayloadExceedsLimit, "tag=%s size=%d limit=%d", tag, size, limit)
	}

	if size == 0 {
		totalDecodes.Add(1)
		totalBytesIn.Add(xiff.HeaderSize)

		return xiff.NewChunk(tag, []byte{}), func() {}, nil
	}

	buf, n, err := readPayload(r, int(size), p)
	if err != nil {
		decodeErrors.Add(1)

		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return xiff.Chunk{}, nil, errors.Wrapf(ErrShortPayload, "tag=%s declared=%d read=%d", tag, size, n)
		}

		return xiff.Chunk{}, nil, errors.Wrapf(err, "read payload failed. tag=%s", tag)
	}

	free = func() {
		p.Free(buf)
	}

	totalDecodes.Add(1)
	totalBytesIn.Add(uint64(xiff.HeaderSize) + uint64(size))

	return xiff.NewChunk(tag, buf), free, nil
}

// readPayload reads exactly size bytes. Payloads up to payloadStep are read
// into one allocation; larger ones grow with the bytes that actually arrive,
// so a corrupt header cannot force a huge allocation up front.
func readPayload(r io.Reader, size int, p bufpool.Pool) ([]byte, int, error) {
	if size <= payloadStep {
		buf := p.Alloc(size)

		n, err := io.ReadFull(r, buf)
		if err != nil {
			p.Free(buf)
			return nil, n, err
		}

		return buf, n, nil
	}

	var b bytes.Buffer

	for b.Len() < size {
		step := min(payloadStep, size-b.Len())
		b.Grow(step)

		if _, err := io.CopyN(&b, r, int64(step)); err != nil {
			return nil, b.Len(), err
		}
	}

	return b.Bytes(), size, nil
}

func readHeader(r io.Reader) (tag xiff.Tag, size uint32, err error) {
	var hdr [xiff.HeaderSize]byte

	n, err := io.ReadFull(r, hdr[:])
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		return tag, 0, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return tag, 0, errors.Wrapf(ErrShortHeader, "read=%d", n)
	default:
		return tag, 0, errors.Wrap(err, "read header failed")
	}

	copy(tag[:], hdr[:xiff.TagSize])

	return tag, binary.LittleEndian.Uint32(hdr[xiff.TagSize:]), nil
}

// Write encodes c as one frame with a single vectored write, which becomes
// writev(2) when w is a socket. Oversized payloads are rejected before
// anything is written.
func Write(w io.Writer, c xiff.Chunk) error {
	if err := c.Validate(); err != nil {
		encodeErrors.Add(1)
		return err
	}

	var size [xiff.SizeFieldSize]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(c.Payload)))

	bufs := net.Buffers{c.Tag[:], size[:]}
	if len(c.Payload) > 0 {
		bufs = append(bufs, c.Payload)
	}

	want := int64(c.FrameSize())

	n, err := bufs.WriteTo(w)
	totalBytesOut.Add(uint64(n))

	if err != nil {
		encodeErrors.Add(1)
		return errors.Wrapf(err, "write frame failed. tag=%s written=%d", c.Tag, n)
	}

	if n != want {
		encodeErrors.Add(1)
		return errors.Wrapf(ErrShortWrite, "tag=%s written=%d want=%d", c.Tag, n, want)
	}

	totalEncodes.Add(1)

	return nil
}
