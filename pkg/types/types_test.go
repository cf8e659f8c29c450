package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want FieldValue
	}{
		{"string", `"12.5"`, Field("12.5")},
		{"null", `null`, FieldValue{}},
		{"bare number", `7`, Field("7")},
		{"empty string", `""`, Field("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FieldValue
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRawEntry_MissingFieldsAreInvalid(t *testing.T) {
	var e RawEntry
	require.NoError(t, json.Unmarshal([]byte(`{"created_at":"2024-01-15T14:30:00Z","entry_id":3,"field2":"abc"}`), &e))
	assert.Equal(t, int64(3), e.EntryID)
	assert.False(t, e.Field1.Valid)

	f, ok := e.Field(2)
	assert.True(t, ok)
	assert.Equal(t, Field("abc"), f)

	_, ok = e.Field(9)
	assert.False(t, ok)
}

func TestParseGridType(t *testing.T) {
	g, err := ParseGridType("wind")
	require.NoError(t, err)
	assert.Equal(t, GridWind, g)
	assert.Equal(t, "Windmill Grid Dashboard", g.Display().Title)

	g, err = ParseGridType("nuclear")
	assert.Error(t, err)
	assert.Equal(t, DefaultGridType, g)
}

func TestChannelConfig_Normalized(t *testing.T) {
	c, err := ChannelConfig{ChannelID: " 42 ", ReadKey: " KEY "}.Normalized()
	require.NoError(t, err)
	assert.Equal(t, ChannelConfig{ChannelID: "42", ReadKey: "KEY"}, c)

	_, err = ChannelConfig{ChannelID: "   "}.Normalized()
	assert.ErrorIs(t, err, ErrEmptyChannelID)
}

func TestReading_ParsedTimestamp(t *testing.T) {
	for _, ts := range []string{"2024-01-15T14:30:00Z", "2024-01-15T14:30:00", "2024-01-15 14:30:00"} {
		r := Reading{Timestamp: ts}
		parsed, err := r.ParsedTimestamp()
		require.NoError(t, err, ts)
		assert.Equal(t, time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC), parsed.UTC())
	}

	r := Reading{Timestamp: "yesterday"}
	_, err := r.ParsedTimestamp()
	assert.Error(t, err)
}

func TestLiveUpdate_JsonBytes(t *testing.T) {
	u := LiveUpdate{
		Reading:   Reading{Timestamp: "2024-01-15T14:30:00Z", BatteryLevel: 80},
		Demo:      true,
		FetchedAt: time.Date(2024, 1, 15, 14, 30, 5, 0, time.UTC),
	}
	back := LiveUpdateFromJsonBytes(u.ToJsonBytes())
	require.NotNil(t, back)
	assert.Equal(t, u.Reading, back.Reading)
	assert.True(t, back.Demo)
	assert.True(t, u.FetchedAt.Equal(back.FetchedAt))

	assert.Nil(t, LiveUpdateFromJsonBytes([]byte("not json")))
}
