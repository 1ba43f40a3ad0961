package session

import (
	"bufio"
	"io"
	"strings"
)

// LineReader yields input lines without their terminator.
// It returns io.EOF when the input is exhausted.
type LineReader interface {
	ReadLine() (string, error)
}

type bufferedReader struct {
	r *bufio.Reader
}

// NewScannerReader reads newline-separated commands from r.
// Lines may be of any length; a final line without a newline is still returned.
func NewScannerReader(r io.Reader) LineReader {
	return &bufferedReader{r: bufio.NewReader(r)}
}

func (b *bufferedReader) ReadLine() (string, error) {
	line, err := b.r.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}
