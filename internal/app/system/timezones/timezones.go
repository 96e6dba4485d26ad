// Package timezones controls the time zone used to display modification
// times. Zone names are IANA identifiers; the tz database is embedded so
// hosts without zoneinfo still resolve them.
package timezones

import (
	"fmt"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"
)

// DisplayLayout is the layout of modification times in listings.
const DisplayLayout = "Jan 2, 2006 3:04 PM"

var (
	mu      sync.RWMutex
	display = time.Local
)

// Resolve returns the location for an IANA zone name. "Local" and the
// empty string mean the server's zone.
func Resolve(id string) (*time.Location, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.EqualFold(id, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q", id)
	}
	return loc, nil
}

// Valid reports whether id names a known zone.
func Valid(id string) bool {
	_, err := Resolve(id)
	return err == nil
}

// SetDisplay sets the zone used by Format.
func SetDisplay(id string) error {
	loc, err := Resolve(id)
	if err != nil {
		return err
	}
	mu.Lock()
	display = loc
	mu.Unlock()
	return nil
}

// Display returns the zone used by Format.
func Display() *time.Location {
	mu.RLock()
	defer mu.RUnlock()
	return display
}

// Format renders t in the display zone.
func Format(t time.Time) string {
	return t.In(Display()).Format(DisplayLayout)
}
