package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportRequest(t *testing.T) {
	t.Run("coordinates", func(t *testing.T) {
		raw := RawMessage{Value: []byte(`{"id":"req-1","lat":"42.0020","lon":"-76.0334","elevation":"528","timezone":"America/New_York","at":"2024-03-20T22:00:00Z"}`)}
		req, err := ParseReportRequest(raw)

		require.NoError(t, err)
		assert.Equal(t, "req-1", req.ID)
		assert.Equal(t, "42.0020", req.Lat)
		assert.Equal(t, "America/New_York", req.Timezone)
	})

	t.Run("key fills missing id", func(t *testing.T) {
		raw := RawMessage{Key: []byte("from-key"), Value: []byte(`{"site":"kopernik"}`)}
		req, err := ParseReportRequest(raw)

		require.NoError(t, err)
		assert.Equal(t, "from-key", req.ID)
		assert.Equal(t, "kopernik", req.Site)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := ParseReportRequest(RawMessage{Value: []byte(`{not json`)})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Contains(t, err.Error(), "parse report request")
	})
}

func TestReportRequest_ParseAt(t *testing.T) {
	fallback := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := ReportRequest{}.ParseAt(fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, got)

	got, err = ReportRequest{At: "2024-03-20T18:00:00-04:00"}.ParseAt(fallback)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 3, 20, 22, 0, 0, 0, time.UTC)))

	_, err = ReportRequest{At: "yesterday"}.ParseAt(fallback)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSerializeReport(t *testing.T) {
	computed := time.Date(2024, 3, 20, 22, 0, 5, 0, time.UTC)
	msg := ReportMessage{
		ID:         "req-1",
		Place:      "kopernik",
		Address:    "Kopernik Observatory",
		Location:   Location{Lat: 42.002, Lon: -76.0334, Elevation: 528},
		Timezone:   "America/New_York",
		Reference:  testRef,
		Ephemeris:  map[string]string{FieldSunset: "Mar 20 19:17:41 EDT"},
		ComputedAt: computed,
	}

	out, err := SerializeReport(msg)
	require.NoError(t, err)

	assert.Equal(t, []byte("req-1"), out.Key)
	assert.Equal(t, "kopernik", out.Headers["place"])
	assert.Equal(t, "2024-03-20T22:00:05Z", out.Headers["computed_at"])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Value, &decoded))
	assert.Equal(t, "America/New_York", decoded["timezone"])
	assert.Equal(t, "2024-03-20T13:15:00Z", decoded["reference"])
	assert.Equal(t, "Mar 20 19:17:41 EDT", decoded["ephemeris"].(map[string]any)[FieldSunset])

	msg.ID = ""
	out, err = SerializeReport(msg)
	require.NoError(t, err)
	assert.Equal(t, []byte("kopernik"), out.Key)
}
