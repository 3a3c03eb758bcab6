package reddit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexString decodes a wire value that is a string, a number or null.
// Reddit emits some identifiers as numbers in one payload and strings in the
// next. Numbers keep their integer text form; 64-bit values are not rounded.
type FlexString struct {
	Value string
	Valid bool
}

// String returns the value, or "" for null.
func (f FlexString) String() string { return f.Value }

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("flexible string: empty input")
	}
	switch c := b[0]; {
	case c == 'n':
		if !bytes.Equal(b, []byte("null")) {
			return fmt.Errorf("flexible string: invalid literal %s", b)
		}
		*f = FlexString{}
		return nil
	case c == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("flexible string: %w", err)
		}
		*f = FlexString{Value: s, Valid: true}
		return nil
	case c == '-' || (c >= '0' && c <= '9'):
		s, err := numberText(string(b))
		if err != nil {
			return err
		}
		*f = FlexString{Value: s, Valid: true}
		return nil
	default:
		return fmt.Errorf("flexible string: unexpected token kind %s", tokenKind(c))
	}
}

func (f FlexString) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

func numberText(raw string) (string, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return strconv.FormatInt(n, 10), nil
	}
	if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
		return strconv.FormatUint(n, 10), nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", fmt.Errorf("flexible string: invalid number %q", raw)
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

func tokenKind(c byte) string {
	switch c {
	case 't', 'f':
		return "boolean"
	case '{':
		return "object"
	case '[':
		return "array"
	}
	return fmt.Sprintf("%q", c)
}
