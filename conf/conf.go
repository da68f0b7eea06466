package conf

import (
	"github.com/go-pantheon/fabrica-iff/xiff"
)

type Config struct {
	Decoder Decoder
	Pool    Pool
}

type Decoder struct {
	// MaxPayloadSize ends the chunk sequence at any frame declaring a larger
	// payload, before the payload is allocated.
	MaxPayloadSize uint32
}

type Pool struct {
	// Thresholds are the payload size classes of the pooled reader, ascending.
	Thresholds []int
}

func Default() Config {
	decoder := Decoder{
		MaxPayloadSize: xiff.MaxPayloadSize,
	}

	pool := Pool{
		Thresholds: []int{64, 256, 1024, 4096, 16384, 65536, 262144, 1048576},
	}

	return Config{
		Decoder: decoder,
		Pool:    pool,
	}
}
