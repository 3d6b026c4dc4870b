package videoroom

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ID is an opaque room or feed identifier. The gateway accepts both integer
// and string identifiers, so the raw JSON token is kept verbatim: a numeric
// id round-trips without float conversion and a string id keeps its kind.
// The zero value means "unset".
type ID struct {
	raw json.RawMessage
}

// NumericID builds an ID from an integer identifier.
func NumericID(n int64) ID {
	return ID{raw: strconv.AppendInt(nil, n, 10)}
}

// StringID builds an ID from a string identifier.
func StringID(s string) ID {
	b, _ := json.Marshal(s)
	return ID{raw: b}
}

// IsZero reports whether the identifier is unset. Used by the omitzero
// option on outgoing request bodies.
func (id ID) IsZero() bool { return len(id.raw) == 0 }

// Equal compares identifiers by their raw wire token.
func (id ID) Equal(other ID) bool { return bytes.Equal(id.raw, other.raw) }

// String renders the identifier without JSON quoting, for logs.
func (id ID) String() string {
	if id.IsZero() {
		return ""
	}
	var s string
	if err := json.Unmarshal(id.raw, &s); err == nil {
		return s
	}
	return string(id.raw)
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	return id.raw, nil
}

func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		id.raw = nil
		return nil
	}
	id.raw = append(id.raw[:0:0], b...)
	return nil
}
