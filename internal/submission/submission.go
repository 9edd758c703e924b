// Package submission reconciles a raw form-submission log against the roster.
//
// The log records every submit event. Grading rewards at most one session's
// worth of participation per calendar day, so counts are taken over distinct
// (identity, day) pairs and clipped to the number of sessions.
package submission

import (
	"sort"
	"time"

	"github.com/kyoshitsu/saiten/internal/table"
	"github.com/kyoshitsu/saiten/internal/textnorm"
)

// KeyFunc normalizes an identity cell into a matching key.
type KeyFunc func(any) string

// Count is the number of distinct submission days for one identity.
type Count struct {
	Identity string
	Count    int
}

// Stats summarizes rows discarded while reconciling.
type Stats struct {
	Rows         int // rows in the log
	NoIdentity   int // dropped: empty identity
	BadTimestamp int // dropped: missing or unparseable timestamp
	SameDay      int // collapsed: repeat submissions on one day
	Clipped      int // identities whose count hit the cap
}

// Reconciler holds the identity normalization shared by both operations.
type Reconciler struct {
	Key KeyFunc
}

// New returns a Reconciler. A nil key uses textnorm.Identity.
func New(key KeyFunc) *Reconciler {
	if key == nil {
		key = textnorm.Identity
	}
	return &Reconciler{Key: key}
}

// CountSubmissions counts distinct submission days per identity, clipped to
// limit. Output is sorted by identity. A negative limit is treated as 0.
func (r *Reconciler) CountSubmissions(log *table.Table, identityCol, timestampCol string, limit int) ([]Count, Stats) {
	if limit < 0 {
		limit = 0
	}
	stats := Stats{Rows: log.Len()}
	days := make(map[string]map[string]bool)

	for _, row := range log.Rows {
		id := r.Key(row[identityCol])
		if id == "" {
			stats.NoIdentity++
			continue
		}
		ts, ok := ParseTimestamp(row[timestampCol])
		if !ok {
			stats.BadTimestamp++
			continue
		}
		d := dateKey(ts)
		if days[id] == nil {
			days[id] = make(map[string]bool)
		}
		if days[id][d] {
			stats.SameDay++
			continue
		}
		days[id][d] = true
	}

	out := make([]Count, 0, len(days))
	for id, set := range days {
		n := len(set)
		if n > limit {
			n = limit
			stats.Clipped++
		}
		out = append(out, Count{Identity: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identity < out[j].Identity })
	return out, stats
}

// LatestEmails maps each identity to the email on its most recent
// timestamped submission. On equal timestamps the later row wins. Rows with
// an empty identity or no valid timestamp are ignored.
func (r *Reconciler) LatestEmails(log *table.Table, identityCol, emailCol, timestampCol string) map[string]string {
	type latest struct {
		at    time.Time
		email string
	}
	best := make(map[string]latest)

	for _, row := range log.Rows {
		id := r.Key(row[identityCol])
		if id == "" {
			continue
		}
		ts, ok := ParseTimestamp(row[timestampCol])
		if !ok {
			continue
		}
		if cur, seen := best[id]; seen && ts.Before(cur.at) {
			continue
		}
		best[id] = latest{at: ts, email: textnorm.Identity(row[emailCol])}
	}

	out := make(map[string]string, len(best))
	for id, l := range best {
		out[id] = l.email
	}
	return out
}

// CountMap indexes counts by identity.
func CountMap(counts []Count) map[string]int {
	m := make(map[string]int, len(counts))
	for _, c := range counts {
		m[c.Identity] = c.Count
	}
	return m
}
