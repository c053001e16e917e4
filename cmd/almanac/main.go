// Command almanac prints a run of daily ephemeris reports for one location as
// a JSON array. Each day is computed with the clock frozen at 14:00 UTC so
// the output is reproducible.
//
// Usage:
//
//	go run ./cmd/almanac -site greenwich -start 2024-03-20 -days 7
//	go run ./cmd/almanac -lat 42.0020 -lon -76.0334 -tz America/New_York -out almanac.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/twilight-ephemeris-service/internal/adapter/astro"
	"github.com/couchcryptid/twilight-ephemeris-service/internal/adapter/tz"
	"github.com/couchcryptid/twilight-ephemeris-service/internal/domain"
	"github.com/couchcryptid/twilight-ephemeris-service/internal/observability"
	"github.com/couchcryptid/twilight-ephemeris-service/internal/pipeline"
)

const dayHourUTC = 14

type options struct {
	site      string
	lat       string
	lon       string
	elevation string
	zone      string
	start     time.Time
	days      int
	out       string
	logLevel  string
}

type reporter interface {
	Report(ctx context.Context, req domain.ReportRequest) (domain.ReportMessage, error)
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	logger := sharedobs.NewLogger(opts.logLevel, "text")
	metrics := observability.NewMetrics()
	engine := domain.NewEngine(astro.NewProvider(), domain.DefaultSettings(time.UTC))
	reports := pipeline.NewTransformer(engine, nil, tz.NewResolver(logger), metrics, logger, "cli")

	msgs, err := generate(context.Background(), reports, opts)
	if err != nil {
		return err
	}

	if opts.out == "" {
		return encode(stdout, msgs)
	}
	if err := writeJSON(opts.out, msgs); err != nil {
		return err
	}
	logger.Info("almanac written", "path", opts.out, "days", len(msgs))
	return nil
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("almanac", flag.ContinueOnError)
	var opts options
	var start string
	fs.StringVar(&opts.site, "site", "", "named observing site (see /api/v1/sites)")
	fs.StringVar(&opts.lat, "lat", "", "latitude in decimal degrees, used when -site is empty")
	fs.StringVar(&opts.lon, "lon", "", "longitude in decimal degrees, used when -site is empty")
	fs.StringVar(&opts.elevation, "elevation", "", "elevation in meters")
	fs.StringVar(&opts.zone, "tz", "", "IANA time zone; defaults to the zone at the location")
	fs.StringVar(&start, "start", "", "first day, YYYY-MM-DD (default today, UTC)")
	fs.IntVar(&opts.days, "days", 7, "number of days")
	fs.StringVar(&opts.out, "out", "", "output path (default stdout)")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.site == "" && (opts.lat == "" || opts.lon == "") {
		return options{}, errors.New("either -site or both -lat and -lon are required")
	}
	if opts.days < 1 || opts.days > 366 {
		return options{}, fmt.Errorf("-days must be 1-366, got %d", opts.days)
	}

	if start == "" {
		now := time.Now().UTC()
		opts.start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		t, err := time.Parse(time.DateOnly, start)
		if err != nil {
			return options{}, fmt.Errorf("invalid -start %q: %w", start, err)
		}
		opts.start = t
	}
	return opts, nil
}

// generate computes one report per day, freezing the domain clock at
// dayHourUTC so each lands in that date's astronomical day.
func generate(ctx context.Context, reports reporter, opts options) ([]domain.ReportMessage, error) {
	defer domain.SetClock(nil)

	msgs := make([]domain.ReportMessage, 0, opts.days)
	for i := range opts.days {
		day := opts.start.AddDate(0, 0, i)
		domain.SetClock(clockwork.NewFakeClockAt(day.Add(dayHourUTC * time.Hour)))

		msg, err := reports.Report(ctx, domain.ReportRequest{
			ID:        day.Format(time.DateOnly),
			Site:      opts.site,
			Lat:       opts.lat,
			Lon:       opts.lon,
			Elevation: opts.elevation,
			Timezone:  opts.zone,
		})
		if err != nil {
			return nil, fmt.Errorf("report for %s: %w", day.Format(time.DateOnly), err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
