package telemetry

import (
	"bytes"
	"errors"
	"io"
	"sort"

	"github.com/goccy/go-json"
)

var errNotObject = errors.New("not an object")

// objectKeys lists the member names of a JSON object in document order.
// A repeated name is reported once, at its first position.
func objectKeys(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('{') {
		return nil, errNotObject
	}

	var (
		keys []string
		seen = make(map[string]bool)
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		if tok == json.Delim('}') {
			return keys, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errNotObject
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
		if err := skipValue(dec); err != nil {
			return nil, err
		}
	}
}

// skipValue consumes one complete value, nested containers included.
func skipValue(dec *json.Decoder) error {
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return unexpectedEOF(err)
		}
		switch tok {
		case json.Delim('{'), json.Delim('['):
			depth++
		case json.Delim('}'), json.Delim(']'):
			depth--
		}
		if depth <= 0 {
			return nil
		}
	}
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// orderedKeys returns the keys of values in the order raw lists them. It
// falls back to sorted order if raw cannot be walked.
func orderedKeys(raw []byte, values map[string]json.RawMessage) []string {
	if keys, err := objectKeys(raw); err == nil && len(keys) == len(values) {
		return keys
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
