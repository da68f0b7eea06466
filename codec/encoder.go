package codec

import (
	"io"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-pantheon/fabrica-iff/frame"
	"github.com/go-pantheon/fabrica-iff/xiff"
)

// Encoder writes each chunk as one self-contained frame. It keeps no state
// besides the sink; after a failed write the sink position is unknown and
// nothing is rolled back.
type Encoder struct {
	w   io.Writer
	log *log.Helper
}

func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	o := NewOptions(opts...)

	return &Encoder{
		w:   w,
		log: log.NewHelper(log.With(o.Logger(), "module", "iff.encoder")),
	}
}

// Append writes c and returns the encoder so calls can be chained:
//
//	enc, err := enc.Append(a)
//	if err == nil {
//		_, err = enc.Append(b)
//	}
//
// Payloads longer than the 32-bit size field are rejected with
// xiff.ErrPayloadTooLarge before any byte is written.
func (e *Encoder) Append(c xiff.Chunk) (*Encoder, error) {
	if err := frame.Write(e.w, c); err != nil {
		e.log.Debugf("append chunk failed. tag=%s %+v", c.Tag, err)
		return nil, err
	}

	return e, nil
}

// AppendAll appends chunks in order and stops at the first failure.
func (e *Encoder) AppendAll(chunks ...xiff.Chunk) (*Encoder, error) {
	for _, c := range chunks {
		if _, err := e.Append(c); err != nil {
			return nil, err
		}
	}

	return e, nil
}

func (e *Encoder) Encode(c xiff.Chunk) error {
	_, err := e.Append(c)
	return err
}
