package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/twilight-ephemeris-service/internal/domain"
	"github.com/couchcryptid/twilight-ephemeris-service/internal/observability"
)

// ReportTransformer answers report requests. It serves the HTTP API directly
// and implements Transformer for the Kafka pipeline.
type ReportTransformer struct {
	engine   *domain.Engine
	geocoder domain.Geocoder
	zones    domain.ZoneResolver
	metrics  *observability.Metrics
	logger   *slog.Logger
	source   string
}

// NewTransformer creates a ReportTransformer. A nil geocoder disables place
// lookups and address enrichment; a nil zone resolver leaves requests without
// a timezone on the engine's default zone. Source labels report metrics.
func NewTransformer(engine *domain.Engine, geocoder domain.Geocoder, zones domain.ZoneResolver, metrics *observability.Metrics, logger *slog.Logger, source string) *ReportTransformer {
	return &ReportTransformer{
		engine:   engine,
		geocoder: geocoder,
		zones:    zones,
		metrics:  metrics,
		logger:   logger,
		source:   source,
	}
}

// Transform decodes a request message, computes its report and serializes the result.
func (t *ReportTransformer) Transform(ctx context.Context, raw domain.RawMessage) (domain.OutputMessage, error) {
	req, err := domain.ParseReportRequest(raw)
	if err != nil {
		t.metrics.ReportErrors.WithLabelValues(t.source, "invalid_request").Inc()
		return domain.OutputMessage{}, err
	}
	msg, err := t.Report(ctx, req)
	if err != nil {
		return domain.OutputMessage{}, err
	}
	return domain.SerializeReport(msg)
}

// Report resolves where and when a request applies and computes its report.
func (t *ReportTransformer) Report(ctx context.Context, req domain.ReportRequest) (domain.ReportMessage, error) {
	msg, err := t.report(ctx, req)
	if err != nil {
		t.metrics.ReportErrors.WithLabelValues(t.source, errorReason(err)).Inc()
		return domain.ReportMessage{}, err
	}
	return msg, nil
}

func (t *ReportTransformer) report(ctx context.Context, req domain.ReportRequest) (domain.ReportMessage, error) {
	msg := domain.ReportMessage{ID: req.ID}

	switch {
	case req.Site != "":
		site, err := domain.LookupSite(req.Site)
		if err != nil {
			return msg, err
		}
		msg.Place = site.Name
		msg.Location = site.Location
		msg.Address = site.Address
		msg.GeoSource = "site"
	case req.Lat != "" || req.Lon != "":
		loc, err := domain.ParseLocation(req.Lat, req.Lon, req.Elevation)
		if err != nil {
			return msg, err
		}
		msg.Location = loc
		msg.Place = loc.LatLng()
	case req.Place != "":
		loc, result, err := domain.ForwardGeocodePlace(ctx, req.Place, t.geocoder, t.logger)
		if err != nil {
			return msg, err
		}
		msg.Location = loc
		msg.Place = req.Place
		msg.Address = result.FormattedAddress
		msg.PlaceName = result.PlaceName
		msg.GeoConfidence = result.Confidence
		msg.GeoSource = "forward"
	default:
		return msg, fmt.Errorf("%w: request needs a site, coordinates or place", domain.ErrInvalidLocation)
	}
	msg.LatLng = msg.Location.LatLng()

	ref, err := req.ParseAt(domain.Now())
	if err != nil {
		return msg, err
	}

	zoneName := t.zoneFor(req, msg.Location)
	report, err := t.engine.Report(msg.Location, zoneName, ref)
	if err != nil {
		return msg, err
	}
	if zoneName != "" && !report.ZoneResolved {
		t.logger.Warn("timezone not found, using default",
			"request_id", req.ID,
			"timezone", zoneName,
			"default", report.Timezone,
		)
	}

	msg.Timezone = report.Timezone
	msg.Reference = report.Reference
	msg.Ephemeris = report.Values
	msg.ComputedAt = domain.Now().UTC()
	msg = domain.EnrichWithAddress(ctx, msg, t.geocoder, t.logger)

	t.metrics.ObserveReport(t.source, report.Circumpolar())
	return msg, nil
}

// zoneFor picks the request's explicit zone, then the zone covering the
// location. An empty result selects the engine default.
func (t *ReportTransformer) zoneFor(req domain.ReportRequest, loc domain.Location) string {
	if req.Timezone != "" {
		return req.Timezone
	}
	if t.zones == nil {
		return ""
	}
	return t.zones.ZoneFor(loc.Lat, loc.Lon)
}

// IsBadRequest reports whether err was caused by the request rather than the service.
func IsBadRequest(err error) bool {
	return errors.Is(err, domain.ErrInvalidLocation) || errors.Is(err, domain.ErrInvalidRequest)
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnknownSite):
		return "unknown_site"
	case errors.Is(err, domain.ErrInvalidLocation):
		return "invalid_location"
	case errors.Is(err, domain.ErrInvalidRequest):
		return "invalid_request"
	default:
		return "provider"
	}
}
