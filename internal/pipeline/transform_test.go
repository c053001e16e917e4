package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/twilight-ephemeris-service/internal/domain"
	"github.com/couchcryptid/twilight-ephemeris-service/internal/observability"
	"github.com/couchcryptid/twilight-ephemeris-service/internal/pipeline"
)

// steadyProvider sets every body 5h after the query start and rises it 15h after.
type steadyProvider struct {
	moonErr error
}

func (p steadyProvider) NextEvent(body domain.Body, _ domain.Location, _ domain.HorizonAngle, _ domain.Limb, start time.Time, kind domain.EventKind) (time.Time, error) {
	if body == domain.Moon && p.moonErr != nil {
		return time.Time{}, p.moonErr
	}
	if kind == domain.Rise {
		return start.Add(15 * time.Hour), nil
	}
	return start.Add(5 * time.Hour), nil
}

type fixedZones string

func (z fixedZones) ZoneFor(_, _ float64) string { return string(z) }

type stubGeocoder struct {
	forward domain.GeocodingResult
	reverse domain.GeocodingResult
}

func (g stubGeocoder) ForwardGeocode(_ context.Context, _, _ string) (domain.GeocodingResult, error) {
	return g.forward, nil
}

func (g stubGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.GeocodingResult, error) {
	return g.reverse, nil
}

var frozenNow = time.Date(2024, 3, 20, 14, 0, 0, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(frozenNow))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func newTestTransformer(provider domain.CelestialPositionProvider, geocoder domain.Geocoder, zones domain.ZoneResolver) (*pipeline.ReportTransformer, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	engine := domain.NewEngine(provider, domain.DefaultSettings(time.UTC))
	return pipeline.NewTransformer(engine, geocoder, zones, metrics, discardLogger(), "pipeline"), metrics
}

func TestReportTransformer_Site(t *testing.T) {
	freezeClock(t)
	tfm, metrics := newTestTransformer(steadyProvider{}, nil, nil)

	msg, err := tfm.Report(context.Background(), domain.ReportRequest{ID: "req-1", Site: "Greenwich"})
	require.NoError(t, err)

	assert.Equal(t, "req-1", msg.ID)
	assert.Equal(t, "greenwich", msg.Place)
	assert.Equal(t, "site", msg.GeoSource)
	assert.Contains(t, msg.Address, "Greenwich Observatory")
	assert.Equal(t, "51.4768, -0.0005", msg.LatLng)
	assert.Equal(t, "UTC", msg.Timezone)
	assert.Equal(t, time.Date(2024, 3, 20, 13, 15, 0, 0, time.UTC), msg.Reference)
	assert.Equal(t, frozenNow, msg.ComputedAt)

	assert.Len(t, msg.Ephemeris, 14)
	assert.Equal(t, "Mar 20 18:15:00 UTC", msg.Ephemeris[domain.FieldSunset])
	assert.Equal(t, "Mar 21 05:15:00 UTC", msg.Ephemeris[domain.FieldSunrise])
	assert.Equal(t, "Mar 21 04:15:00 UTC", msg.Ephemeris[domain.FieldMoonrise])
	assert.Equal(t, "True", msg.Ephemeris[domain.FieldMoonAnte])
	assert.Equal(t, "Waxing Gibbous Moon", msg.Ephemeris[domain.FieldMoonPhase])
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReportsComputed.WithLabelValues("pipeline")))
}

func TestReportTransformer_Coordinates(t *testing.T) {
	freezeClock(t)
	geo := stubGeocoder{reverse: domain.GeocodingResult{FormattedAddress: "Greenwich, London", PlaceName: "Greenwich", Confidence: 1}}
	tfm, _ := newTestTransformer(steadyProvider{}, geo, fixedZones("Europe/London"))

	msg, err := tfm.Report(context.Background(), domain.ReportRequest{
		Lat: "51.4768",
		Lon: "-0.0005",
		At:  "2024-03-21T02:30:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, "51.4768, -0.0005", msg.Place)
	assert.Equal(t, "Europe/London", msg.Timezone)
	assert.Equal(t, "Greenwich, London", msg.Address)
	assert.Equal(t, "reverse", msg.GeoSource)
	assert.Equal(t, time.Date(2024, 3, 20, 13, 15, 0, 0, time.UTC), msg.Reference, "02:30 UTC belongs to the previous astronomical day")
	assert.Equal(t, "Mar 20 18:15:00 GMT", msg.Ephemeris[domain.FieldSunset])
}

func TestReportTransformer_ExplicitZoneWins(t *testing.T) {
	freezeClock(t)
	tfm, _ := newTestTransformer(steadyProvider{}, nil, fixedZones("Europe/London"))

	msg, err := tfm.Report(context.Background(), domain.ReportRequest{Site: "nc", Timezone: "America/New_York"})
	require.NoError(t, err)

	assert.Equal(t, "America/New_York", msg.Timezone)
	assert.Equal(t, "Mar 20 14:15:00 EDT", msg.Ephemeris[domain.FieldSunset])
}

func TestReportTransformer_UnknownZoneFallsBack(t *testing.T) {
	freezeClock(t)
	tfm, _ := newTestTransformer(steadyProvider{}, nil, nil)

	msg, err := tfm.Report(context.Background(), domain.ReportRequest{Site: "nc", Timezone: "Mars/Olympus_Mons"})
	require.NoError(t, err)
	assert.Equal(t, "UTC", msg.Timezone)
}

func TestReportTransformer_Place(t *testing.T) {
	freezeClock(t)
	geo := stubGeocoder{forward: domain.GeocodingResult{
		Lat:              47.5675,
		Lon:              -52.7072,
		FormattedAddress: "St. John's, Newfoundland and Labrador, Canada",
		PlaceName:        "St. John's",
		Confidence:       0.9,
	}}
	tfm, _ := newTestTransformer(steadyProvider{}, geo, nil)

	msg, err := tfm.Report(context.Background(), domain.ReportRequest{Place: "St. John's"})
	require.NoError(t, err)

	assert.Equal(t, "St. John's", msg.Place)
	assert.Equal(t, "forward", msg.GeoSource)
	assert.Equal(t, "47.5675, -52.7072", msg.LatLng)
	assert.Equal(t, "St. John's, Newfoundland and Labrador, Canada", msg.Address)
	assert.InDelta(t, 0.9, msg.GeoConfidence, 1e-9)
}

func TestReportTransformer_Errors(t *testing.T) {
	providerDown := errors.New("ephemeris backend unavailable")

	cases := []struct {
		name       string
		provider   steadyProvider
		req        domain.ReportRequest
		target     error
		reason     string
		badRequest bool
	}{
		{
			name:   "unknown site",
			req:    domain.ReportRequest{Site: "atlantis"},
			target: domain.ErrUnknownSite,
			reason: "unknown_site",
		},
		{
			name:       "latitude out of range",
			req:        domain.ReportRequest{Lat: "91", Lon: "0"},
			target:     domain.ErrInvalidLocation,
			reason:     "invalid_location",
			badRequest: true,
		},
		{
			name:       "NaN latitude",
			req:        domain.ReportRequest{Lat: "NaN", Lon: "0"},
			target:     domain.ErrInvalidLocation,
			reason:     "invalid_location",
			badRequest: true,
		},
		{
			name:       "place without geocoder",
			req:        domain.ReportRequest{Place: "Binghamton"},
			target:     domain.ErrInvalidLocation,
			reason:     "invalid_location",
			badRequest: true,
		},
		{
			name:       "nothing to locate",
			req:        domain.ReportRequest{ID: "empty"},
			target:     domain.ErrInvalidLocation,
			reason:     "invalid_location",
			badRequest: true,
		},
		{
			name:       "malformed instant",
			req:        domain.ReportRequest{Site: "nc", At: "yesterday"},
			reason:     "invalid_request",
			badRequest: true,
		},
		{
			name:     "provider failure",
			provider: steadyProvider{moonErr: providerDown},
			req:      domain.ReportRequest{Site: "nc"},
			target:   providerDown,
			reason:   "provider",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			freezeClock(t)
			tfm, metrics := newTestTransformer(tc.provider, nil, nil)

			_, err := tfm.Report(context.Background(), tc.req)
			require.Error(t, err)
			if tc.target != nil {
				assert.ErrorIs(t, err, tc.target)
			}
			assert.Equal(t, tc.badRequest, pipeline.IsBadRequest(err))
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReportErrors.WithLabelValues("pipeline", tc.reason)))
			assert.Zero(t, testutil.ToFloat64(metrics.ReportsComputed.WithLabelValues("pipeline")))
		})
	}
}

func TestReportTransformer_Transform(t *testing.T) {
	freezeClock(t)
	tfm, _ := newTestTransformer(steadyProvider{}, nil, nil)

	out, err := tfm.Transform(context.Background(), domain.RawMessage{
		Key:   []byte("req-7"),
		Value: []byte(`{"site":"kopernik","timezone":"UTC"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("req-7"), out.Key, "message key becomes the request ID")
	assert.Equal(t, "kopernik", out.Headers["place"])
	assert.Equal(t, "2024-03-20T14:00:00Z", out.Headers["computed_at"])

	var msg domain.ReportMessage
	require.NoError(t, json.Unmarshal(out.Value, &msg))
	assert.Equal(t, "req-7", msg.ID)
	assert.Equal(t, "Mar 20 18:15:00 UTC", msg.Ephemeris[domain.FieldSunset])
}

func TestReportTransformer_TransformMalformed(t *testing.T) {
	tfm, metrics := newTestTransformer(steadyProvider{}, nil, nil)

	_, err := tfm.Transform(context.Background(), domain.RawMessage{Value: []byte("not json")})
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReportErrors.WithLabelValues("pipeline", "invalid_request")))
}
