package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// linePINReader prompts on a terminal without echo and falls back to
// reading one line per PIN when in is not a terminal.
type linePINReader struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
}

func newLinePINReader(in io.Reader, out io.Writer) *linePINReader {
	return &linePINReader{
		in:     in,
		out:    out,
		reader: bufio.NewReader(in),
	}
}

func (r *linePINReader) ReadPIN(prompt string) (string, error) {
	if f, ok := r.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(r.out, prompt)
		pin, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(r.out)
		if err != nil {
			return "", fmt.Errorf("read PIN: %w", err)
		}
		return string(pin), nil
	}

	line, err := r.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read PIN: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
