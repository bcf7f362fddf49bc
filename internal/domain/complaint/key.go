package complaint

import (
	"fmt"
	"strings"
	"time"
)

// RecordKey locates stored complaints for updates.
//
// The sheet has no row identifiers, so the key is derived from
// (problem, date, time). It is assumed unique but nothing enforces it: two
// complaints sharing title, date and minute have the same key and a status
// update addressed to one also changes the other.
type RecordKey struct {
	Problem string
	Date    string
	Time    string
}

const keySeparator = "|"

// String renders the key as "problem|date|time".
func (k RecordKey) String() string {
	return strings.Join([]string{k.Problem, k.Date, k.Time}, keySeparator)
}

// ParseRecordKey parses the "problem|date|time" form. The problem title may
// itself contain the separator; date and time are taken from the right.
func ParseRecordKey(s string) (RecordKey, error) {
	last := strings.LastIndex(s, keySeparator)
	if last < 0 {
		return RecordKey{}, fmt.Errorf("invalid record key %q: expected problem|date|time", s)
	}
	mid := strings.LastIndex(s[:last], keySeparator)
	if mid < 0 {
		return RecordKey{}, fmt.Errorf("invalid record key %q: expected problem|date|time", s)
	}

	key := RecordKey{
		Problem: s[:mid],
		Date:    s[mid+1 : last],
		Time:    s[last+1:],
	}
	if key.Problem == "" || key.Date == "" || key.Time == "" {
		return RecordKey{}, fmt.Errorf("invalid record key %q: empty component", s)
	}
	return key, nil
}

// Canonical returns the key with an HH:MM time padded to HH:MM:SS, the form
// complaints are stored with. Any other time is left as written.
func (k RecordKey) Canonical() RecordKey {
	if t, err := time.Parse("15:04", k.Time); err == nil {
		k.Time = t.Format(TimeLayout)
	}
	return k
}

// KeySet is a set of record keys. Keys are compared in canonical form, so
// "09:00" and "09:00:00" select the same complaints.
type KeySet map[RecordKey]struct{}

// NewKeySet builds a set from keys, collapsing duplicates.
func NewKeySet(keys ...RecordKey) KeySet {
	set := make(KeySet, len(keys))
	for _, k := range keys {
		set[k.Canonical()] = struct{}{}
	}
	return set
}

// Contains reports whether k is in the set.
func (s KeySet) Contains(k RecordKey) bool {
	_, ok := s[k.Canonical()]
	return ok
}
