package parser

import (
	"bufio"
	"io"
)

// lineReader splits decoded text into physical lines ending in "\n", "\r\n"
// or a bare "\r". Lines longer than max bytes are consumed but not kept.
type lineReader struct {
	r   *bufio.Reader
	max int
	buf []byte
}

func newLineReader(r io.Reader, max int) *lineReader {
	return &lineReader{r: bufio.NewReaderSize(r, 64*1024), max: max}
}

// next returns the next line without its terminator. tooLong reports that the
// line exceeded the limit, in which case line is empty. io.EOF is returned
// once the stream is exhausted.
func (lr *lineReader) next() (line string, tooLong bool, err error) {
	lr.buf = lr.buf[:0]
	size := 0
	for {
		c, err := lr.r.ReadByte()
		if err == io.EOF {
			if size == 0 {
				return "", false, io.EOF
			}
			break
		}
		if err != nil {
			return "", false, err
		}

		if c == '\n' {
			break
		}
		if c == '\r' {
			if nb, err := lr.r.Peek(1); err == nil && nb[0] == '\n' {
				_, _ = lr.r.ReadByte()
			}
			break
		}

		size++
		if size > lr.max {
			tooLong = true
			lr.buf = lr.buf[:0]
			continue
		}
		if !tooLong {
			lr.buf = append(lr.buf, c)
		}
	}

	if tooLong {
		return "", true, nil
	}
	return string(lr.buf), false, nil
}
