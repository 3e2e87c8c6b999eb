package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Decode parses a catalog document. It accepts either a JSON array of records
// or an object carrying the array under "pokemon". A leading UTF-8 BOM and
// surrounding whitespace are ignored; an empty document yields no records.
func Decode(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return decodeBytes(data)
}

func decodeBytes(data []byte) ([]Record, error) {
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	var records []Record
	if data[0] == '{' {
		var wrapper struct {
			Pokemon []Record `json:"pokemon"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		records = wrapper.Pokemon
	} else if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return records, nil
}
