package frame

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fabrica_iff"

var _ prometheus.Collector = (*Collector)(nil)

// Collector exports the frame counters to Prometheus. Values are read from
// GetStats at scrape time.
type Collector struct {
	encodes      *prometheus.Desc
	decodes      *prometheus.Desc
	bytesIn      *prometheus.Desc
	bytesOut     *prometheus.Desc
	encodeErrors *prometheus.Desc
	decodeErrors *prometheus.Desc
	cleanEnds    *prometheus.Desc
	poolAllocs   *prometheus.Desc
	poolMisses   *prometheus.Desc
}

func NewCollector() *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "frame", name), help, nil, nil)
	}

	return &Collector{
		encodes:      desc("encodes_total", "Frames written."),
		decodes:      desc("decodes_total", "Frames read."),
		bytesIn:      desc("bytes_in_total", "Bytes consumed by successful frame reads."),
		bytesOut:     desc("bytes_out_total", "Bytes handed to sinks by frame writes."),
		encodeErrors: desc("encode_errors_total", "Frame writes that failed or were rejected."),
		decodeErrors: desc("decode_errors_total", "Frame reads that stopped on truncated or oversized frames."),
		cleanEnds:    desc("clean_ends_total", "Frame reads that found the source exhausted at a frame boundary."),
		poolAllocs:   desc("pool_allocs_total", "Payload buffers requested from the pool."),
		poolMisses:   desc("pool_misses_total", "Payload buffers larger than every pool size class."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.encodes
	ch <- c.decodes
	ch <- c.bytesIn
	ch <- c.bytesOut
	ch <- c.encodeErrors
	ch <- c.decodeErrors
	ch <- c.cleanEnds
	ch <- c.poolAllocs
	ch <- c.poolMisses
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := GetStats()

	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}

	counter(c.encodes, st.TotalEncodes)
	counter(c.decodes, st.TotalDecodes)
	counter(c.bytesIn, st.TotalBytesIn)
	counter(c.bytesOut, st.TotalBytesOut)
	counter(c.encodeErrors, st.EncodeErrors)
	counter(c.decodeErrors, st.DecodeErrors)
	counter(c.cleanEnds, st.CleanEnds)
	counter(c.poolAllocs, st.PoolAllocs)
	counter(c.poolMisses, st.PoolMisses)
}
