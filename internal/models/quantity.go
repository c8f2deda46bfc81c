package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Quantity is a decimal amount as received on the wire. Clients may send it
// either as a JSON string ("7.5", "7,5") or as a JSON number (7.5); both keep
// the literal text so parsing stays exact. Parsing and range checks happen in
// the timesheet package.
type Quantity string

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = Quantity(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("quantity must be a number or a string, got %s", data)
	}
	*q = Quantity(n.String())
	return nil
}
