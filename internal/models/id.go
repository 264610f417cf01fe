package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is an opaque record identifier. The API sends numbers, but nothing here does
// arithmetic on them, so they are kept as their textual form.
type ID string

// String returns the identifier text.
func (id ID) String() string {
	return string(id)
}

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode id: %w", err)
		}

		*id = ID(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("failed to decode id %s: %w", data, err)
	}

	*id = ID(n.String())

	return nil
}

// MarshalJSON writes numeric identifiers as numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}

	if isNumeric(string(id)) {
		return []byte(id), nil
	}

	return json.Marshal(string(id))
}

func isNumeric(s string) bool {
	for i, r := range s {
		if r == '-' && i == 0 && len(s) > 1 {
			continue
		}

		if r < '0' || r > '9' {
			return false
		}
	}

	return s != ""
}
