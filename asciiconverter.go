package ftpd

import (
	"bufio"
	"io"
)

type convertMode int

const (
	convertModeToCRLF convertMode = iota
	convertModeToLF
)

// asciiConverter wraps a reader, rewriting line endings for ASCII-mode
// transfers: convertModeToCRLF for sending to the client, convertModeToLF
// for receiving from it. A file with no line endings passes through
// unchanged.
type asciiConverter struct {
	reader    *bufio.Reader
	mode      convertMode
	remaining []byte
}

func newASCIIConverter(r io.Reader, mode convertMode) *asciiConverter {
	return &asciiConverter{
		reader: bufio.NewReaderSize(r, 4096),
		mode:   mode,
	}
}

func (c *asciiConverter) Read(p []byte) (n int, err error) {
	var data []byte

	if len(c.remaining) > 0 {
		data = c.remaining
		c.remaining = nil
	} else {
		data, _, err = c.reader.ReadLine()
		if err != nil {
			return
		}
	}

	n = len(data)
	if n > 0 {
		maxSize := len(p) - 2
		if n > maxSize {
			copy(p, data[:maxSize])
			c.remaining = data[maxSize:]

			return maxSize, nil
		}

		copy(p[:n], data[:n])
	}

	// A partial read (line too long, or a trailing line with no ending)
	// leaves nothing to peek; only append an ending when one was read.
	err = c.reader.UnreadByte()
	if err != nil {
		return
	}

	lastByte, err := c.reader.ReadByte()

	if err == nil && lastByte == '\n' {
		switch c.mode {
		case convertModeToCRLF:
			p[n] = '\r'
			p[n+1] = '\n'
			n += 2
		case convertModeToLF:
			p[n] = '\n'
			n++
		}
	}

	return n, err
}
