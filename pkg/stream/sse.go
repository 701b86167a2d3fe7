package stream

import (
	"bufio"
	"io"
	"strings"
)

// frame is one decoded SSE frame. Name is the "event:" field, Data the
// concatenated "data:" lines, ID the raw "id:" field.
type frame struct {
	name string
	id   string
	data []byte
}

// sseDecoder incrementally parses the text/event-stream format. It only
// implements the subset the feed protocol uses: named frames with single- or
// multi-line data, ids, and comment heartbeats.
type sseDecoder struct {
	scanner *bufio.Scanner
}

func newSSEDecoder(r io.Reader) *sseDecoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	return &sseDecoder{scanner: sc}
}

// next returns the next complete non-comment frame, or io.EOF when the
// stream closed cleanly at a frame boundary. Pure-comment frames
// (heartbeats) are consumed silently.
func (d *sseDecoder) next() (frame, error) {
	var f frame
	dirty := false

	for d.scanner.Scan() {
		line := d.scanner.Text()

		if line == "" {
			// Blank line terminates a frame.
			if dirty {
				return f, nil
			}
			// Heartbeat or stray separator: keep reading.
			f = frame{}
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue // comment
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			f.name = value
			dirty = true
		case "id":
			f.id = value
			dirty = true
		case "data":
			if len(f.data) > 0 {
				f.data = append(f.data, '\n')
			}
			f.data = append(f.data, value...)
			dirty = true
		}
		// Unknown fields (e.g. retry) are ignored per the SSE spec.
	}

	if err := d.scanner.Err(); err != nil {
		return frame{}, err
	}
	if dirty && len(f.data) > 0 {
		// Stream ended mid-frame without a terminating blank line; deliver
		// what we have rather than dropping a final event.
		return f, nil
	}
	return frame{}, io.EOF
}
