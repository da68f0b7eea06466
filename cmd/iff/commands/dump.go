package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/go-pantheon/fabrica-iff/codec"
	"github.com/go-pantheon/fabrica-iff/frame"
	"github.com/go-pantheon/fabrica-iff/xiff"
	"github.com/go-pantheon/fabrica-util/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/urfave/cli/v2"
)

var ErrTrailingData = errors.New("trailing bytes after last chunk")

// NewDumpCommand returns a cli.Command for "iff dump".
func NewDumpCommand() *cli.Command {
	cmd := cli.Command{
		Name:      "dump",
		Usage:     "List the chunks of a stream.",
		UsageText: `iff dump [options] [file]`,
		Description: `The dump command prints one line per chunk: index, offset, tag and size.

Reading stops at the first frame that cannot be decoded whole. Any bytes
left after the last chunk are reported, and make the command fail with
--strict:

$ iff dump --strict sound.iff

With no file, or "-", the stream is read from standard input.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "fail when bytes remain after the last decodable chunk",
			},
			&cli.Uint64Flag{
				Name:  "max-size",
				Usage: "stop at the first chunk declaring a larger payload",
				Value: xiff.MaxPayloadSize,
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "print frame counters in Prometheus text format afterwards",
			},
		},
	}

	cmd.Action = func(c *cli.Context) error {
		in, closeIn, err := openInput(c.Args().First())
		if err != nil {
			return err
		}
		defer closeIn()

		maxSize := c.Uint64("max-size")
		if maxSize > xiff.MaxPayloadSize {
			return cli.Exit(fmt.Sprintf("max-size must not exceed %d", uint64(xiff.MaxPayloadSize)), 2)
		}

		opts := append(codecOptions(c), codec.WithMaxPayloadSize(uint32(maxSize)))

		rep, err := Dump(bufio.NewReader(in), c.App.Writer, opts...)
		if err != nil {
			return err
		}

		if c.Bool("metrics") {
			if err := writeMetrics(c.App.Writer); err != nil {
				return err
			}
		}

		if rep.Trailing > 0 && c.Bool("strict") {
			return errors.Wrapf(ErrTrailingData, "%d bytes at offset %d", rep.Trailing, rep.Decoded)
		}

		return nil
	}

	return &cmd
}

// DumpReport summarises one dump.
type DumpReport struct {
	Chunks   int
	Decoded  int64 // bytes covered by decoded chunks
	Trailing int64 // bytes read or left behind after the last chunk
}

// Dump lists every chunk of r on w and then drains r to measure what the
// decoder could not use.
func Dump(r io.Reader, w io.Writer, opts ...codec.Option) (DumpReport, error) {
	var rep DumpReport

	cr := &countingReader{r: r}
	dec := codec.NewDecoder(cr, opts...)

	for chunk := range dec.All() {
		if _, err := fmt.Fprintf(w, "%6d  %10d  %-12s  %d\n", rep.Chunks, rep.Decoded, chunk.Tag, chunk.Size()); err != nil {
			return rep, errors.Wrap(err, "write listing failed")
		}

		rep.Chunks++
		rep.Decoded += int64(chunk.FrameSize())
	}

	if _, err := io.Copy(io.Discard, cr); err != nil {
		return rep, errors.Wrap(err, "drain input failed")
	}

	rep.Trailing = cr.n - rep.Decoded

	if _, err := fmt.Fprintf(w, "%d chunks, %d bytes", rep.Chunks, rep.Decoded); err != nil {
		return rep, errors.Wrap(err, "write listing failed")
	}

	if rep.Trailing > 0 {
		_, err := fmt.Fprintf(w, ", %d trailing bytes\n", rep.Trailing)
		return rep, err
	}

	_, err := fmt.Fprintln(w)

	return rep, err
}

func writeMetrics(w io.Writer) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(frame.NewCollector()); err != nil {
		return errors.Wrap(err, "register collector failed")
	}

	mfs, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics failed")
	}

	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrap(err, "write metrics failed")
		}
	}

	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)

	return n, err
}

func openInput(name string) (io.Reader, func(), error) {
	if name == "" || name == "-" {
		return os.Stdin, func() {}, nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open %s failed", name)
	}

	return f, func() { _ = f.Close() }, nil
}
