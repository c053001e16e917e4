package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownSite is returned by LookupSite for names not in the site table.
var ErrUnknownSite = errors.New("unknown site")

// Site is a named observing location with its display address.
type Site struct {
	Name     string   `json:"name"`
	Location Location `json:"location"`
	Address  string   `json:"address"`
}

var libraryPark = Site{
	Name:     "nc",
	Location: Location{Lat: 35.6921, Lon: -80.4357, Elevation: 218.2},
	Address:  "On Library Park: 35° 41' 32\"N 80° 26' 9\"W",
}

// sites are the observing locations the service knows by name.
var sites = map[string]Site{
	"nc":       libraryPark,
	"erikshus": {Name: "erikshus", Location: libraryPark.Location, Address: libraryPark.Address},
	"gammelhus": {
		Name:     "gammelhus",
		Location: Location{Lat: 42.1064, Lon: -76.2624, Elevation: 248.7168},
		Address:  "Under the streetlamp: 42° 06' 23\"N 76° 15' 45\"W",
	},
	"kopernik": {
		Name:     "kopernik",
		Location: Location{Lat: 42.0020, Lon: -76.0334, Elevation: 528},
		Address:  "Kopernik Observatory: 42° 0' 7\"N 76° 2' 0\"W",
	},
	"deetop": {
		Name:     "deetop",
		Location: Location{Lat: 41.97, Lon: -75.67, Elevation: 284},
		Address:  "Dee-Top Observatory: 41° 58' 12\"N 75° 40' 12\"W",
	},
	"stjohns": {
		Name:     "stjohns",
		Location: Location{Lat: 47.5675, Lon: -52.7072, Elevation: 83},
		Address:  "St. John's: 47° 34' 3\"N 52° 42' 26\"W",
	},
	"greenwich": {
		Name:     "greenwich",
		Location: Location{Lat: 51.4768, Lon: -0.0005, Elevation: 47.1526},
		Address:  "Greenwich Observatory: 51° 28' 38\"N 0° 0' 0\"",
	},
}

// LookupSite finds a site by case-insensitive name.
func LookupSite(name string) (Site, error) {
	site, ok := sites[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Site{}, fmt.Errorf("%w: %q", ErrUnknownSite, name)
	}
	return site, nil
}

// Sites returns every known site sorted by name.
func Sites() []Site {
	out := make([]Site, 0, len(sites))
	for _, s := range sites {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
