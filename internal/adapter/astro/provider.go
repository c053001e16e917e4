// Package astro implements the celestial position provider on top of
// go-sunrise (sun) and learnmeeus (moon).
package astro

import (
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/twilight-ephemeris-service/internal/domain"
	"github.com/couchcryptid/twilight-ephemeris-service/internal/observability"
)

// bodyProvider answers queries for a single body.
type bodyProvider interface {
	NextEvent(loc domain.Location, angle domain.HorizonAngle, limb domain.Limb, start time.Time, kind domain.EventKind) (time.Time, error)
}

// Provider dispatches queries to the sun or moon implementation.
type Provider struct {
	sun  bodyProvider
	moon bodyProvider
}

// NewProvider returns a provider backed by the real sun and moon models.
func NewProvider() *Provider {
	return &Provider{sun: SunProvider{}, moon: NewMoonProvider()}
}

func (p *Provider) NextEvent(body domain.Body, loc domain.Location, angle domain.HorizonAngle, limb domain.Limb, start time.Time, kind domain.EventKind) (time.Time, error) {
	switch body {
	case domain.Sun:
		return p.sun.NextEvent(loc, angle, limb, start, kind)
	case domain.Moon:
		return p.moon.NextEvent(loc, angle, limb, start, kind)
	}
	return time.Time{}, fmt.Errorf("unsupported body %q", body)
}

// InstrumentedProvider records query latency and circumpolar answers.
type InstrumentedProvider struct {
	next    domain.CelestialPositionProvider
	metrics *observability.Metrics
}

// NewInstrumentedProvider wraps next with metrics.
func NewInstrumentedProvider(next domain.CelestialPositionProvider, metrics *observability.Metrics) *InstrumentedProvider {
	return &InstrumentedProvider{next: next, metrics: metrics}
}

func (p *InstrumentedProvider) NextEvent(body domain.Body, loc domain.Location, angle domain.HorizonAngle, limb domain.Limb, start time.Time, kind domain.EventKind) (time.Time, error) {
	begin := time.Now()
	at, err := p.next.NextEvent(body, loc, angle, limb, start, kind)
	p.metrics.ProviderQueryDuration.WithLabelValues(string(body)).Observe(time.Since(begin).Seconds())

	switch {
	case errors.Is(err, domain.ErrCircumpolar):
		p.metrics.ProviderQueries.WithLabelValues(string(body), "circumpolar").Inc()
	case err != nil:
		p.metrics.ProviderQueries.WithLabelValues(string(body), "error").Inc()
	default:
		p.metrics.ProviderQueries.WithLabelValues(string(body), "success").Inc()
	}
	return at, err
}
