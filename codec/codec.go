// Package codec turns byte streams into lazy chunk sequences and back.
//
// Length fields are little-endian; see package xiff for the wire layout.
// Neither Decoder nor Encoder is safe for concurrent use.
package codec

import (
	"github.com/go-pantheon/fabrica-iff/xiff"
)

var (
	_ xiff.ChunkReader = (*Decoder)(nil)
	_ xiff.ChunkWriter = (*Encoder)(nil)
)
