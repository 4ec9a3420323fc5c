// Package wire reads and writes newline-delimited JSON messages.
//
// Wire format:
//
//	<json>\n
//
// Every line is exactly one message. The HTTP event stream, its client and
// "cliplog watch --json" use this framing.
package wire

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// MaxMessageSize is the largest line we will read (16 MiB).
const MaxMessageSize = 16 * 1024 * 1024

// ErrTooLarge is returned by ReadMsg for lines longer than MaxMessageSize.
var ErrTooLarge = errors.New("wire: message too large")

// Encoder writes one JSON message per line. It is safe for concurrent use.
type Encoder struct {
	mu sync.Mutex
	w  io.Writer
}

// NewEncoder returns an Encoder writing to w. If w is an http.Flusher every
// message is flushed as soon as it is written.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// WriteMsg serialises v to JSON and writes it followed by a newline.
func (e *Encoder) WriteMsg(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	line := append(raw, '\n')

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.w.Write(line); err != nil {
		return err
	}
	if f, ok := e.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// Decoder reads one JSON message per line.
type Decoder struct {
	br *bufio.Reader
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{br: bufio.NewReaderSize(r, 64*1024)}
}

// ReadMsg reads one newline-terminated line and unmarshals it into v.
// It returns io.EOF when the stream ends cleanly between messages.
func (d *Decoder) ReadMsg(v any) error {
	var line []byte
	for {
		chunk, isPrefix, err := d.br.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && len(line) > 0 {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		line = append(line, chunk...)
		if len(line) > MaxMessageSize {
			return fmt.Errorf("%w (%d bytes)", ErrTooLarge, len(line))
		}
		if !isPrefix {
			break
		}
	}
	if err := json.Unmarshal(line, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
