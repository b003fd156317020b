package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Payload is a raw backend tree node. Only "children" and "position" have a
// structural meaning; every other key is a display field.
type Payload map[string]any

// Stats is the optional statistics object that accompanies a tree response.
type Stats map[string]any

// Response is the envelope returned by the tree endpoints.
type Response struct {
	Success Flag    `json:"success"`
	Message string  `json:"message,omitempty"`
	Tree    Payload `json:"tree"`
	Stats   Stats   `json:"stats,omitempty"`
}

// Flag decodes booleans the way PHP backends tend to send them:
// true/false, 1/0, "1"/"0", "true"/"false", "yes"/"no".
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*f = Flag(truthy(v))
	return nil
}

// Decode reads a tree Response from r. Numbers are preserved as json.Number
// so large counts survive untouched.
func Decode(r io.Reader) (*Response, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var resp Response
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode tree response: %w", err)
	}
	return &resp, nil
}

// DecodePayload reads a bare tree payload (no envelope) from r.
func DecodePayload(r io.Reader) (Payload, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode tree payload: %w", err)
	}
	return p, nil
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0
	case float64:
		return x != 0
	case int:
		return x != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "yes", "y", "on":
			return true
		}
	}
	return false
}

// number converts a display value to a non-negative float.
func number(v any) float64 {
	var f float64
	switch x := v.(type) {
	case json.Number:
		f, _ = x.Float64()
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		f, _ = strconv.ParseFloat(s, 64)
	}
	if f != f || f < 0 || f > 1e15 {
		return 0
	}
	return f
}

// text converts a display value to a string, or "" if it has none.
func text(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	}
	return ""
}
