// Package state persists the geocode index between batch runs, so
// organizations already resolved in a previous run are not re-sent to the
// geocoding services.
package state

import (
	"context"
	"time"
)

// Entry records what the index knows about one organization identity.
type Entry struct {
	Geocoded    bool
	LastUpdated time.Time
}

// Index maps organization identities to their geocoding state.
type Index map[string]Entry

// IsResolved reports whether the identity was successfully geocoded in a
// previous run. Failed attempts are recorded but do not count as resolved,
// so they are retried.
func (ix Index) IsResolved(identity string) bool {
	return ix[identity].Geocoded
}

// Record stores the outcome of a geocoding attempt.
func (ix Index) Record(identity string, geocoded bool, at time.Time) {
	ix[identity] = Entry{Geocoded: geocoded, LastUpdated: at}
}

// Merge folds incoming entries into the index. Incoming wins on conflict:
// the run being merged is newer than whatever the index holds.
func (ix Index) Merge(incoming Index) {
	for identity, e := range incoming {
		ix[identity] = e
	}
}

// Store loads and saves the index between runs.
type Store interface {
	Load(ctx context.Context) (Index, error)
	Save(ctx context.Context, ix Index) error
}
