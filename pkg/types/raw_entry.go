package types

import (
	"bytes"
	"encoding/json"
)

// Number of numbered fields a channel can carry.
const MaxFields = 8

// FieldValue is one numbered field of a feed entry.
// ThingSpeak sends strings, but null and bare numbers show up too.
type FieldValue struct {
	Value string
	Valid bool
}

func (f *FieldValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = FieldValue{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FieldValue{Value: s, Valid: true}
		return nil
	}
	// Numbers, bools and anything else are kept raw; the normalizer decides.
	*f = FieldValue{Value: string(b), Valid: true}
	return nil
}

func (f FieldValue) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Field builds a present field value.
func Field(value string) FieldValue {
	return FieldValue{Value: value, Valid: true}
}

// RawEntry is a feed entry as returned by the telemetry API.
type RawEntry struct {
	CreatedAt string     `json:"created_at"`
	EntryID   int64      `json:"entry_id"`
	Field1    FieldValue `json:"field1"`
	Field2    FieldValue `json:"field2"`
	Field3    FieldValue `json:"field3"`
	Field4    FieldValue `json:"field4"`
	Field5    FieldValue `json:"field5"`
	Field6    FieldValue `json:"field6"`
	Field7    FieldValue `json:"field7"`
	Field8    FieldValue `json:"field8"`
}

// Field returns numbered field n (1..8).
func (e *RawEntry) Field(n int) (FieldValue, bool) {
	switch n {
	case 1:
		return e.Field1, true
	case 2:
		return e.Field2, true
	case 3:
		return e.Field3, true
	case 4:
		return e.Field4, true
	case 5:
		return e.Field5, true
	case 6:
		return e.Field6, true
	case 7:
		return e.Field7, true
	case 8:
		return e.Field8, true
	default:
		return FieldValue{}, false
	}
}
