package domain

import (
	"errors"
	"fmt"
	"time"
)

// --- provider doubles ---

type providerCall struct {
	Body  Body
	Kind  EventKind
	Angle HorizonAngle
	Limb  Limb
	Start time.Time
}

// providerFunc adapts a function to CelestialPositionProvider.
type providerFunc func(call providerCall) (time.Time, error)

func (f providerFunc) NextEvent(body Body, _ Location, angle HorizonAngle, limb Limb, start time.Time, kind EventKind) (time.Time, error) {
	return f(providerCall{Body: body, Kind: kind, Angle: angle, Limb: limb, Start: start})
}

type scriptKey struct {
	body  Body
	kind  EventKind
	angle string
	start time.Time
}

// scriptedProvider answers only the queries it was told about and records
// every call it receives.
type scriptedProvider struct {
	answers map[scriptKey]time.Time
	errs    map[scriptKey]error
	calls   []providerCall
}

func newScriptedProvider() *scriptedProvider {
	return &scriptedProvider{
		answers: make(map[scriptKey]time.Time),
		errs:    make(map[scriptKey]error),
	}
}

func (p *scriptedProvider) on(body Body, kind EventKind, angle HorizonAngle, start, at time.Time) *scriptedProvider {
	p.answers[scriptKey{body, kind, angle.Name, start.UTC()}] = at
	return p
}

func (p *scriptedProvider) fail(body Body, kind EventKind, angle HorizonAngle, start time.Time, err error) *scriptedProvider {
	p.errs[scriptKey{body, kind, angle.Name, start.UTC()}] = err
	return p
}

func (p *scriptedProvider) NextEvent(body Body, _ Location, angle HorizonAngle, limb Limb, start time.Time, kind EventKind) (time.Time, error) {
	p.calls = append(p.calls, providerCall{Body: body, Kind: kind, Angle: angle, Limb: limb, Start: start})
	key := scriptKey{body, kind, angle.Name, start.UTC()}
	if err, ok := p.errs[key]; ok {
		return time.Time{}, err
	}
	if at, ok := p.answers[key]; ok {
		return at, nil
	}
	return time.Time{}, fmt.Errorf("unscripted query %s %s %s from %s", body, kind, angle.Name, start.Format(time.RFC3339))
}

func (p *scriptedProvider) callsFor(body Body, kind EventKind) []providerCall {
	var out []providerCall
	for _, c := range p.calls {
		if c.Body == body && c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

var errProviderDown = errors.New("ephemeris backend unavailable")
