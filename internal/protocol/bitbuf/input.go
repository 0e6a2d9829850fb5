package bitbuf

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// MaxLineBytes bounds a single input line.
const MaxLineBytes = 16 * 1024 * 1024

// ReadHexLine returns the first non-blank line of r with surrounding
// whitespace removed. The line is not validated; pass it to New.
func ReadHexLine(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			return line, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("bitbuf: read input: %w", err)
	}
	return "", ErrEmpty
}
