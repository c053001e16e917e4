package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRequest is returned for request messages that cannot be decoded
// or carry a malformed instant.
var ErrInvalidRequest = errors.New("invalid request")

// ReportRequest asks for one report. Site takes precedence over coordinates;
// Place is forward-geocoded when neither site nor coordinates are given.
type ReportRequest struct {
	ID        string `json:"id,omitempty"`
	Site      string `json:"site,omitempty"`
	Place     string `json:"place,omitempty"`
	Lat       string `json:"lat,omitempty"`
	Lon       string `json:"lon,omitempty"`
	Elevation string `json:"elevation,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
	At        string `json:"at,omitempty"` // RFC 3339; empty means now
}

// RawMessage represents an unprocessed message from the source topic.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// ReportMessage is a computed report together with where and when it applies.
type ReportMessage struct {
	ID         string            `json:"id,omitempty"`
	Place      string            `json:"place"`
	Address    string            `json:"address,omitempty"`
	LatLng     string            `json:"latlng"`
	Location   Location          `json:"location"`
	Timezone   string            `json:"timezone"`
	Reference  time.Time         `json:"reference"`
	Ephemeris  map[string]string `json:"ephemeris"`
	ComputedAt time.Time         `json:"computed_at"`

	// Geocoding enrichment fields.
	PlaceName     string  `json:"place_name,omitempty"`
	GeoConfidence float64 `json:"geo_confidence,omitempty"`
	GeoSource     string  `json:"geo_source,omitempty"` // "site", "forward", "reverse", "original", "failed"
}

// OutputMessage is the serialized form destined for the sink topic.
type OutputMessage struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// ParseReportRequest decodes a source-topic message. The message key is used
// as the request ID when the payload has none.
func ParseReportRequest(raw RawMessage) (ReportRequest, error) {
	var req ReportRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return ReportRequest{}, fmt.Errorf("%w: parse report request: %w", ErrInvalidRequest, err)
	}
	if req.ID == "" {
		req.ID = string(raw.Key)
	}
	return req, nil
}

// ParseAt returns the request's instant, or fallback when At is empty.
func (r ReportRequest) ParseAt(fallback time.Time) (time.Time, error) {
	if r.At == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, r.At)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parse at %q: %w", ErrInvalidRequest, r.At, err)
	}
	return t, nil
}

// SerializeReport encodes a report message for the sink topic, keyed by
// request ID (or place when the request had none).
func SerializeReport(msg ReportMessage) (OutputMessage, error) {
	value, err := json.Marshal(msg)
	if err != nil {
		return OutputMessage{}, fmt.Errorf("serialize report: %w", err)
	}
	key := msg.ID
	if key == "" {
		key = msg.Place
	}
	return OutputMessage{
		Key:   []byte(key),
		Value: value,
		Headers: map[string]string{
			"place":       msg.Place,
			"computed_at": msg.ComputedAt.UTC().Format(time.RFC3339),
		},
	}, nil
}
