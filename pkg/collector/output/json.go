package output

import (
	"encoding/json"
)

// ToJSON serialises any result (workbook info, series, run report).
func ToJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
