package frame

import (
	"io"
	"sync/atomic"
	"time"

	"github.com/go-pantheon/fabrica-util/errors"
)

var (
	totalEncodes  atomic.Uint64
	totalDecodes  atomic.Uint64
	totalBytesIn  atomic.Uint64
	totalBytesOut atomic.Uint64
	encodeErrors  atomic.Uint64
	decodeErrors  atomic.Uint64
	cleanEnds     atomic.Uint64

	lastStatsReset atomic.Value
)

type Stats struct {
	TotalEncodes  uint64    `json:"total_encodes"`
	TotalDecodes  uint64    `json:"total_decodes"`
	TotalBytesIn  uint64    `json:"total_bytes_in"`
	TotalBytesOut uint64    `json:"total_bytes_out"`
	EncodeErrors  uint64    `json:"encode_errors"`
	DecodeErrors  uint64    `json:"decode_errors"`
	CleanEnds     uint64    `json:"clean_ends"`
	PoolAllocs    uint64    `json:"pool_allocs"`
	PoolMisses    uint64    `json:"pool_misses"`
	AvgChunkSize  float64   `json:"avg_chunk_size"`
	LastReset     time.Time `json:"last_reset"`
}

// recordDecodeError counts a failed header read. A clean end of stream is
// not a decode error.
func recordDecodeError(err error) {
	if errors.Is(err, io.EOF) {
		cleanEnds.Add(1)
		return
	}

	decodeErrors.Add(1)
}

// GetStats returns the process-wide frame counters. Pool counters are those
// of the pool currently installed by InitPool.
func GetStats() Stats {
	decodes := totalDecodes.Load()
	bytesIn := totalBytesIn.Load()

	var avgChunkSize float64
	if decodes > 0 {
		avgChunkSize = float64(bytesIn) / float64(decodes)
	}

	lastReset := time.Time{}
	if val := lastStatsReset.Load(); val != nil {
		lastReset = val.(time.Time)
	}

	ps := pool.Stats()

	return Stats{
		TotalEncodes:  totalEncodes.Load(),
		TotalDecodes:  decodes,
		TotalBytesIn:  bytesIn,
		TotalBytesOut: totalBytesOut.Load(),
		EncodeErrors:  encodeErrors.Load(),
		DecodeErrors:  decodeErrors.Load(),
		CleanEnds:     cleanEnds.Load(),
		PoolAllocs:    ps.Allocs,
		PoolMisses:    ps.Misses,
		AvgChunkSize:  avgChunkSize,
		LastReset:     lastReset,
	}
}

// ResetStats zeroes the frame counters. Pool counters live with the pool and
// are reset by InitPool.
func ResetStats() {
	totalEncodes.Store(0)
	totalDecodes.Store(0)
	totalBytesIn.Store(0)
	totalBytesOut.Store(0)
	encodeErrors.Store(0)
	decodeErrors.Store(0)
	cleanEnds.Store(0)
	lastStatsReset.Store(time.Now())
}
