package complaint

import "sort"

// Filter selects complaints for listing. Empty fields match everything.
type Filter struct {
	Author string
	Status Status
	Date   string
}

// Match reports whether c passes the filter.
func (f Filter) Match(c Complaint) bool {
	if f.Author != "" && c.Author != f.Author {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Date != "" && c.Date != f.Date {
		return false
	}
	return true
}

// FilterComplaints returns the complaints matching f, keeping their order.
//
// Pure function: No I/O operations, fully testable with direct inputs.
func FilterComplaints(complaints []Complaint, f Filter) []Complaint {
	filtered := make([]Complaint, 0, len(complaints))
	for _, c := range complaints {
		if f.Match(c) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// UniqueAuthors returns the sorted set of non-empty authors.
//
// Pure function: No I/O operations, fully testable with direct inputs.
func UniqueAuthors(complaints []Complaint) []string {
	seen := make(map[string]bool)
	authors := make([]string, 0)
	for _, c := range complaints {
		if c.Author == "" || seen[c.Author] {
			continue
		}
		seen[c.Author] = true
		authors = append(authors, c.Author)
	}
	sort.Strings(authors)
	return authors
}

// Marker is every complaint reported at one location.
type Marker struct {
	Location   Location
	Complaints []Complaint
}

// GroupByLocation groups complaints sharing a location, in order of first
// appearance. Complaints whose location could not be parsed are skipped so a
// map renderer never has to deal with them.
//
// Pure function: No I/O operations, fully testable with direct inputs.
func GroupByLocation(complaints []Complaint) []Marker {
	index := make(map[[2]float64]int)
	markers := make([]Marker, 0)
	for _, c := range complaints {
		if !c.Location.Valid() {
			continue
		}
		point := [2]float64{c.Location.Lat(), c.Location.Lng()}
		i, ok := index[point]
		if !ok {
			i = len(markers)
			index[point] = i
			markers = append(markers, Marker{Location: c.Location})
		}
		markers[i].Complaints = append(markers[i].Complaints, c)
	}
	return markers
}
