package changes

import (
	"fmt"

	"github.com/goccy/go-json"
)

// wire is the payload shape shared by the network buses.
type wire struct {
	Tables []string `json:"tables,omitempty"`
	URIs   []string `json:"uris,omitempty"`
}

func (c Changes) MarshalJSON() ([]byte, error) {
	return json.Marshal(wire{Tables: c.tables, URIs: c.uris})
}

func (c *Changes) UnmarshalJSON(data []byte) error {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = ForTables(w.Tables...).WithURIs(w.URIs...)
	return nil
}

// Encode renders c as a notification payload.
func Encode(c Changes) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", c, err)
	}
	return string(data), nil
}

// Decode parses a payload produced by Encode.
func Decode(payload string) (Changes, error) {
	var c Changes
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Changes{}, fmt.Errorf("decode change payload %q: %w", payload, err)
	}
	return c, nil
}
