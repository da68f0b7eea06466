// Package bufpool is a size-class payload pool for pooled frame reads.
package bufpool

import (
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/go-pantheon/fabrica-util/errors"
)

type Pool interface {
	Alloc(int) []byte
	Free([]byte)
}

var _ Pool = (*SyncPool)(nil)

var (
	// ErrThresholdsRequired is returned when no size class is given
	ErrThresholdsRequired = errors.New("thresholds must not be empty")
	// ErrThresholdsNotSorted is returned when the size classes are not strictly ascending
	ErrThresholdsNotSorted = errors.New("thresholds must be sorted in ascending order")
)

// SyncPool keeps one sync.Pool per size class. A payload is served by the
// smallest class that fits it; payloads above the largest class are plain
// heap allocations and are never pooled.
type SyncPool struct {
	pools      []sync.Pool
	thresholds []int

	allocs atomic.Uint64
	misses atomic.Uint64
	frees  atomic.Uint64
}

// New creates a pool with one class per threshold.
// For example []int{256, 1024} serves sizes in (0,256] and (256,1024]
// from the pool and allocates anything larger directly.
func New(thresholds []int) (*SyncPool, error) {
	if len(thresholds) == 0 {
		return nil, ErrThresholdsRequired
	}

	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			return nil, ErrThresholdsNotSorted
		}
	}

	if thresholds[0] <= 0 {
		return nil, errors.Wrapf(ErrThresholdsNotSorted, "first threshold %d", thresholds[0])
	}

	p := &SyncPool{
		pools:      make([]sync.Pool, len(thresholds)),
		thresholds: slices.Clone(thresholds),
	}

	for i, size := range p.thresholds {
		p.pools[i].New = func() any {
			buf := make([]byte, size)
			return &buf
		}
	}

	return p, nil
}

func (p *SyncPool) class(size int) (int, bool) {
	i := sort.SearchInts(p.thresholds, size)

	return i, i < len(p.thresholds)
}

// Alloc returns a slice of exactly size bytes.
func (p *SyncPool) Alloc(size int) []byte {
	if size <= 0 {
		return []byte{}
	}

	p.allocs.Add(1)

	i, ok := p.class(size)
	if !ok {
		p.misses.Add(1)
		return make([]byte, size)
	}

	mem := p.pools[i].Get().(*[]byte)

	return (*mem)[:size]
}

// Free returns a slice obtained from Alloc. Slices whose capacity is not
// exactly a size class are dropped.
func (p *SyncPool) Free(mem []byte) {
	size := cap(mem)
	if size == 0 {
		return
	}

	i, ok := p.class(size)
	if !ok || p.thresholds[i] != size {
		return
	}

	p.frees.Add(1)

	mem = mem[:size]
	clear(mem)
	p.pools[i].Put(&mem)
}

// Stats reports the allocation counters.
func (p *SyncPool) Stats() Stats {
	return Stats{
		Allocs: p.allocs.Load(),
		Misses: p.misses.Load(),
		Frees:  p.frees.Load(),
	}
}

// Thresholds returns a copy of the size classes.
func (p *SyncPool) Thresholds() []int {
	return slices.Clone(p.thresholds)
}

type Stats struct {
	Allocs uint64 // Alloc calls with a positive size
	Misses uint64 // allocations larger than every size class
	Frees  uint64 // buffers put back into a class
}
