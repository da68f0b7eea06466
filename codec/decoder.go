package codec

import (
	"io"
	"iter"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-pantheon/fabrica-iff/frame"
	"github.com/go-pantheon/fabrica-iff/xiff"
	"github.com/go-pantheon/fabrica-util/errors"
)

// Decoder yields the chunks of a stream one frame at a time. The sequence
// ends at the first frame that cannot be read whole: a clean end of the
// source and a truncated or oversized frame look the same to the caller.
// Callers that must tell them apart can check the source afterwards, or
// use frame.Read directly.
type Decoder struct {
	r     io.Reader
	limit uint32
	done  bool
	log   *log.Helper
}

func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	o := NewOptions(opts...)

	return &Decoder{
		r:     r,
		limit: o.Conf().Decoder.MaxPayloadSize,
		log:   log.NewHelper(log.With(o.Logger(), "module", "iff.decoder")),
	}
}

// Next reads the next frame. It returns false once the sequence has ended
// and never touches the source again after that.
func (d *Decoder) Next() (xiff.Chunk, bool) {
	if d.done {
		return xiff.Chunk{}, false
	}

	chunk, err := frame.Read(d.r, d.limit)
	if err != nil {
		d.done = true

		if !errors.Is(err, io.EOF) {
			d.log.Debugf("chunk sequence ended early. %+v", err)
		}

		return xiff.Chunk{}, false
	}

	return chunk, true
}

// All ranges over the remaining chunks. Breaking out of the loop leaves the
// decoder positioned at the next frame.
func (d *Decoder) All() iter.Seq[xiff.Chunk] {
	return func(yield func(xiff.Chunk) bool) {
		for {
			chunk, ok := d.Next()
			if !ok || !yield(chunk) {
				return
			}
		}
	}
}

// Done reports whether the sequence has ended.
func (d *Decoder) Done() bool {
	return d.done
}
