package commands

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/go-pantheon/fabrica-iff/codec"
	"github.com/go-pantheon/fabrica-iff/xiff"
	"github.com/go-pantheon/fabrica-util/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidChunkArg = errors.New("chunk argument must be TAG=path")

// NewPackCommand returns a cli.Command for "iff pack".
func NewPackCommand() *cli.Command {
	cmd := cli.Command{
		Name:      "pack",
		Usage:     "Build a stream with one chunk per input file.",
		UsageText: `iff pack [options] TAG=path...`,
		Description: `The pack command writes each file as one chunk, in argument order:

$ iff pack -o out.iff "fmt =fmt.bin" data=samples.raw

Tags must be exactly four bytes; pad with spaces where needed.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "file to write. Defaults to STDOUT.",
			},
		},
	}

	cmd.Action = func(c *cli.Context) error {
		args := c.Args().Slice()
		if len(args) == 0 {
			return errors.New(cmd.UsageText)
		}

		chunks, err := loadChunks(c.Context, args)
		if err != nil {
			return err
		}

		out, closeOut, err := createOutput(c.String("output"))
		if err != nil {
			return err
		}

		w := bufio.NewWriter(out)

		if err := Pack(w, chunks, codecOptions(c)...); err != nil {
			_ = closeOut()
			return err
		}

		if err := w.Flush(); err != nil {
			_ = closeOut()
			return errors.Wrap(err, "flush output failed")
		}

		return closeOut()
	}

	return &cmd
}

// Pack encodes chunks to w in order.
func Pack(w io.Writer, chunks []xiff.Chunk, opts ...codec.Option) error {
	_, err := codec.NewEncoder(w, opts...).AppendAll(chunks...)
	return err
}

// ParseChunkArg splits a "TAG=path" argument.
func ParseChunkArg(arg string) (xiff.Tag, string, error) {
	tag, path, ok := strings.Cut(arg, "=")
	if !ok || path == "" {
		return xiff.Tag{}, "", errors.Wrapf(ErrInvalidChunkArg, "got %q", arg)
	}

	t, err := xiff.NewTag(tag)
	if err != nil {
		return xiff.Tag{}, "", errors.Wrapf(err, "argument %q", arg)
	}

	return t, path, nil
}

// loadChunks reads every input file concurrently and keeps argument order.
func loadChunks(ctx context.Context, args []string) ([]xiff.Chunk, error) {
	tags := make([]xiff.Tag, len(args))
	paths := make([]string, len(args))

	for i, arg := range args {
		tag, path, err := ParseChunkArg(arg)
		if err != nil {
			return nil, err
		}

		tags[i], paths[i] = tag, path
	}

	chunks := make([]xiff.Chunk, len(args))

	eg, ctx := errgroup.WithContext(ctx)

	for i, path := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "read %s failed", path)
			}

			chunks[i] = xiff.NewChunk(tags[i], data)

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return chunks, nil
}

func createOutput(name string) (io.Writer, func() error, error) {
	if name == "" || name == "-" {
		return os.Stdout, func() error { return nil }, nil
	}

	f, err := os.Create(name)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "create %s failed", name)
	}

	return f, f.Close, nil
}
