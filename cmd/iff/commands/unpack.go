package commands

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pantheon/fabrica-iff/codec"
	"github.com/go-pantheon/fabrica-iff/xiff"
	"github.com/go-pantheon/fabrica-util/errors"
	"github.com/urfave/cli/v2"
)

// NewUnpackCommand returns a cli.Command for "iff unpack".
func NewUnpackCommand() *cli.Command {
	cmd := cli.Command{
		Name:      "unpack",
		Usage:     "Write every chunk payload of a stream to its own file.",
		UsageText: `iff unpack [options] [file]`,
		Description: `The unpack command is the reverse of pack. Files are named
<index>_<tag>.bin, with characters unsafe in file names replaced by '_':

$ iff unpack -d out sound.iff`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "directory to write into",
				Value:   ".",
			},
		},
	}

	cmd.Action = func(c *cli.Context) error {
		in, closeIn, err := openInput(c.Args().First())
		if err != nil {
			return err
		}
		defer closeIn()

		dir := c.String("dir")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s failed", dir)
		}

		dec := codec.NewDecoder(bufio.NewReader(in), codecOptions(c)...)

		n, err := Unpack(dec, dir)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(c.App.Writer, "%d chunks written to %s\n", n, dir)

		return err
	}

	return &cmd
}

// Unpack writes each chunk read from r into dir and returns how many it wrote.
func Unpack(r xiff.ChunkReader, dir string) (int, error) {
	n := 0

	for {
		chunk, ok := r.Next()
		if !ok {
			return n, nil
		}

		name := filepath.Join(dir, ChunkFileName(n, chunk.Tag))
		if err := os.WriteFile(name, chunk.Payload, 0o644); err != nil {
			return n, errors.Wrapf(err, "write %s failed", name)
		}

		n++
	}
}

// ChunkFileName names the file holding the index-th chunk. Each tag byte maps
// to one character, so the tag part is always four characters long.
func ChunkFileName(index int, tag xiff.Tag) string {
	var safe [xiff.TagSize]byte

	for i, b := range tag {
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9', b == '-':
			safe[i] = b
		default:
			safe[i] = '_'
		}
	}

	return fmt.Sprintf("%04d_%s.bin", index, safe[:])
}
