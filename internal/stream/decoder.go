package stream

import (
	"bytes"
	"encoding/json"
	"io"
)

var dataPrefix = []byte("data: ")

// Decoder is the receiving side of the event framing. It buffers raw bytes
// from the transport, splits on newlines, keeps the trailing incomplete line
// as carry-over for the next chunk, and yields only lines carrying a
// parseable `data: ` payload. Unparsable lines are discarded rather than
// failing the stream, since chunk boundaries are arbitrary.
type Decoder struct {
	r    io.Reader
	buf  []byte
	done bool
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Next returns the raw JSON payload of the next event, or io.EOF once the
// stream is exhausted.
func (d *Decoder) Next() (json.RawMessage, error) {
	for {
		if payload, ok := d.takeLine(); ok {
			return payload, nil
		}
		if d.done {
			// Flush the final line that never got its newline.
			if payload, ok := parseDataLine(d.buf); ok {
				d.buf = nil
				return payload, nil
			}
			return nil, io.EOF
		}
		chunk := make([]byte, 4096)
		n, err := d.r.Read(chunk)
		if n > 0 {
			d.buf = append(d.buf, chunk[:n]...)
		}
		if err == io.EOF {
			d.done = true
		} else if err != nil {
			return nil, err
		}
	}
}

// DecodeAll drains the decoder into a slice of event payloads.
func (d *Decoder) DecodeAll() ([]json.RawMessage, error) {
	var events []json.RawMessage
	for {
		payload, err := d.Next()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, payload)
	}
}

func (d *Decoder) takeLine() (json.RawMessage, bool) {
	for {
		idx := bytes.IndexByte(d.buf, '\n')
		if idx < 0 {
			return nil, false
		}
		line := d.buf[:idx]
		d.buf = d.buf[idx+1:]
		if payload, ok := parseDataLine(line); ok {
			return payload, true
		}
	}
}

func parseDataLine(line []byte) (json.RawMessage, bool) {
	line = bytes.TrimSpace(line)
	if !bytes.HasPrefix(line, dataPrefix) {
		return nil, false
	}
	payload := bytes.TrimSpace(bytes.TrimPrefix(line, dataPrefix))
	if !json.Valid(payload) {
		return nil, false
	}
	return json.RawMessage(bytes.Clone(payload)), true
}
