package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrLocationUnavailable is returned when no coordinates are configured.
// There is no fallback location.
var ErrLocationUnavailable = errors.New("location unavailable")

type Location struct {
	Lat float64
	Lon float64
}

// Locator resolves the device location.
type Locator interface {
	Locate(ctx context.Context) (Location, error)
}

// StaticLocator returns fixed coordinates from config or flags.
type StaticLocator struct {
	Lat *float64
	Lon *float64
}

func (l StaticLocator) Locate(ctx context.Context) (Location, error) {
	if err := ctx.Err(); err != nil {
		return Location{}, err
	}
	if l.Lat == nil || l.Lon == nil {
		return Location{}, ErrLocationUnavailable
	}
	if *l.Lat < -90 || *l.Lat > 90 || *l.Lon < -180 || *l.Lon > 180 {
		return Location{}, ErrLocationUnavailable
	}
	return Location{Lat: *l.Lat, Lon: *l.Lon}, nil
}

const zoneinfoMarker = "zoneinfo/"

// LocalTimezone resolves the IANA timezone name: override, then $TZ, then the
// /etc/localtime link target, then UTC.
func LocalTimezone(override string) string {
	for _, name := range []string{override, strings.TrimPrefix(os.Getenv("TZ"), ":")} {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, err := time.LoadLocation(name); err == nil {
			return name
		}
	}
	if target, err := os.Readlink("/etc/localtime"); err == nil {
		if name := zoneFromPath(target); name != "" {
			return name
		}
	}
	if name := time.Local.String(); name != "" && name != "Local" {
		return name
	}
	return "UTC"
}

func zoneFromPath(p string) string {
	p = filepath.ToSlash(p)
	i := strings.LastIndex(p, zoneinfoMarker)
	if i < 0 {
		return ""
	}
	name := p[i+len(zoneinfoMarker):]
	if _, err := time.LoadLocation(name); err != nil {
		return ""
	}
	return name
}
