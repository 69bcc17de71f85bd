package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// TagSuggestion is one confidence-scored candidate mapping produced by the
// AI tagging pipeline. Confidence is an integer percentage in [0,100].
type TagSuggestion struct {
	AssetID    uuid.UUID `json:"asset_id"`
	AssetName  string    `json:"asset_name"`
	Confidence int       `json:"confidence"`
	Reason     string    `json:"reason,omitempty"`
}

// SuggestionList is the JSONB cache of the last suggestion set on a product.
type SuggestionList []TagSuggestion

// Value implements driver.Valuer.
func (s SuggestionList) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *SuggestionList) Scan(src any) error {
	if src == nil {
		*s = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported SuggestionList source %T", src)
	}
	if len(raw) == 0 {
		*s = nil
		return nil
	}
	return json.Unmarshal(raw, s)
}
