package core

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"sort"
	"strconv"
)

// Ledger maps course and week to accumulated study hours.
//
// A Ledger built by NewLedger or DecodeLedger is normalized: every fixed
// course/week pair has an entry. Entries outside the fixed sets that were
// read from storage are kept so they survive the next save, but they are
// not part of any total.
//
// Ledger is not safe for concurrent use; callers serialize access.
type Ledger struct {
	hours map[Course]map[Week]float64
	// raw holds stored week keys that are not canonical week numbers
	// ("future", "01", "+1"). They are written back unchanged.
	raw map[Course]map[string]float64
}

// NewLedger returns a normalized ledger with every cell at zero.
func NewLedger() *Ledger {
	l := &Ledger{hours: make(map[Course]map[Week]float64, len(courses))}
	l.Normalize()
	return l
}

// Normalize adds a zero entry for any missing fixed course/week pair.
// Existing values, including out-of-range ones, are left untouched.
func (l *Ledger) Normalize() {
	if l.hours == nil {
		l.hours = make(map[Course]map[Week]float64, len(courses))
	}
	for _, c := range courses {
		row, ok := l.hours[c]
		if !ok {
			row = make(map[Week]float64, int(LastWeek-FirstWeek)+1)
			l.hours[c] = row
		}
		for w := FirstWeek; w <= LastWeek; w++ {
			if _, ok := row[w]; !ok {
				row[w] = 0
			}
		}
	}
}

// AddHours parses raw as an hour delta and adds it to the course/week cell.
// It returns the delta that was applied. On any error the ledger is left
// unchanged.
func (l *Ledger) AddHours(c Course, w Week, raw string) (float64, error) {
	if err := checkCell(c, w); err != nil {
		return 0, err
	}
	delta, err := ParseHours(raw)
	if err != nil {
		return 0, err
	}
	if err := l.checkSum(c, w, delta); err != nil {
		return 0, err
	}
	l.add(c, w, delta)
	return delta, nil
}

// Add adds a numeric hour delta to the course/week cell.
func (l *Ledger) Add(c Course, w Week, delta float64) error {
	if err := checkCell(c, w); err != nil {
		return err
	}
	if err := checkDelta(delta); err != nil {
		return err
	}
	if err := l.checkSum(c, w, delta); err != nil {
		return err
	}
	l.add(c, w, delta)
	return nil
}

// checkSum rejects a delta that would push the cell past the largest
// representable value.
func (l *Ledger) checkSum(c Course, w Week, delta float64) error {
	if math.IsInf(l.hours[c][w]+delta, 0) {
		return fmt.Errorf("%w: %s/%d would overflow", ErrValidation, c, int(w))
	}
	return nil
}

func (l *Ledger) add(c Course, w Week, delta float64) {
	if l.hours == nil {
		l.hours = make(map[Course]map[Week]float64)
	}
	row, ok := l.hours[c]
	if !ok {
		row = make(map[Week]float64)
		l.hours[c] = row
	}
	row[w] += delta
}

func checkCell(c Course, w Week) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return w.Validate()
}

// Hours returns the stored value for the cell, or 0 when absent.
func (l *Ledger) Hours(c Course, w Week) float64 {
	return l.hours[c][w]
}

// CourseTotal sums the fixed weeks of one course.
func (l *Ledger) CourseTotal(c Course) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	var sum float64
	for w := FirstWeek; w <= LastWeek; w++ {
		sum += l.hours[c][w]
	}
	return sum, nil
}

// WeekTotal sums the fixed courses for one week.
func (l *Ledger) WeekTotal(w Week) (float64, error) {
	if err := w.Validate(); err != nil {
		return 0, err
	}
	var sum float64
	for _, c := range courses {
		sum += l.hours[c][w]
	}
	return sum, nil
}

// Total sums every fixed cell.
func (l *Ledger) Total() float64 {
	var sum float64
	for _, c := range courses {
		for w := FirstWeek; w <= LastWeek; w++ {
			sum += l.hours[c][w]
		}
	}
	return sum
}

// Clone returns a deep copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	out := &Ledger{hours: make(map[Course]map[Week]float64, len(l.hours))}
	for c, row := range l.hours {
		out.hours[c] = maps.Clone(row)
	}
	if l.raw != nil {
		out.raw = make(map[Course]map[string]float64, len(l.raw))
		for c, row := range l.raw {
			out.raw[c] = maps.Clone(row)
		}
	}
	return out
}

// Equal reports whether both ledgers hold the same cells with the same values.
func (l *Ledger) Equal(o *Ledger) bool {
	return equalRows(l.hours, o.hours) && equalRows(l.raw, o.raw)
}

// equalRows treats a missing course and an empty one as the same.
func equalRows[K comparable](a, b map[Course]map[K]float64) bool {
	for c, row := range a {
		if !maps.Equal(row, b[c]) {
			return false
		}
	}
	for c, row := range b {
		if _, ok := a[c]; !ok && len(row) > 0 {
			return false
		}
	}
	return true
}

// Cells calls fn for every stored cell, fixed or preserved, in course then
// week order. It is used by storage backends that persist rows.
func (l *Ledger) Cells(fn func(c Course, w Week, hours float64)) {
	cs := make([]Course, 0, len(l.hours))
	for c := range l.hours {
		cs = append(cs, c)
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i] < cs[j] })
	for _, c := range cs {
		row := l.hours[c]
		ws := make([]Week, 0, len(row))
		for w := range row {
			ws = append(ws, w)
		}
		sort.Slice(ws, func(i, j int) bool { return ws[i] < ws[j] })
		for _, w := range ws {
			fn(c, w, row[w])
		}
	}
}

// Set stores hours for a cell without range checks. Storage backends use it
// to rebuild a ledger, including cells outside the fixed sets.
func (l *Ledger) Set(c Course, w Week, hours float64) {
	if l.hours == nil {
		l.hours = make(map[Course]map[Week]float64)
	}
	row, ok := l.hours[c]
	if !ok {
		row = make(map[Week]float64)
		l.hours[c] = row
	}
	row[w] = hours
}

// SetRaw stores hours under a week key that is not a canonical week number.
// Such entries never take part in totals.
func (l *Ledger) SetRaw(c Course, key string, hours float64) {
	if l.raw == nil {
		l.raw = make(map[Course]map[string]float64)
	}
	row, ok := l.raw[c]
	if !ok {
		row = make(map[string]float64)
		l.raw[c] = row
	}
	row[key] = hours
}

// RawCells calls fn for every entry stored by SetRaw, in course then key order.
func (l *Ledger) RawCells(fn func(c Course, key string, hours float64)) {
	cs := make([]Course, 0, len(l.raw))
	for c := range l.raw {
		cs = append(cs, c)
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i] < cs[j] })
	for _, c := range cs {
		row := l.raw[c]
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fn(c, k, row[k])
		}
	}
}

// RawKeys lists the entries stored by SetRaw as sorted "course/key" strings.
func (l *Ledger) RawKeys() []string {
	var keys []string
	l.RawCells(func(c Course, key string, _ float64) {
		keys = append(keys, string(c)+"/"+key)
	})
	return keys
}

// document is the persisted layout: course name -> week number -> hours.
type document map[string]map[string]float64

// MarshalJSON encodes the ledger with week numbers as string keys.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	doc := make(document, len(l.hours))
	row := func(c Course) map[string]float64 {
		weeks, ok := doc[string(c)]
		if !ok {
			weeks = make(map[string]float64)
			doc[string(c)] = weeks
		}
		return weeks
	}
	for c, weeks := range l.hours {
		out := row(c)
		for w, h := range weeks {
			out[strconv.Itoa(int(w))] = h
		}
	}
	for c, keys := range l.raw {
		out := row(c)
		for k, h := range keys {
			out[k] = h
		}
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes and normalizes the ledger.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeLedger(data)
	if err != nil {
		return err
	}
	*l = *decoded
	return nil
}

// DecodeLedger parses the persisted layout and normalizes the result.
// Only canonical decimal keys ("1", "14", "-3") become weeks. Any other key,
// including "01" or "+1", is kept verbatim through SetRaw so that a later
// save writes it back and no two keys ever collapse onto one week.
func DecodeLedger(data []byte) (*Ledger, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	l := &Ledger{hours: make(map[Course]map[Week]float64, len(doc))}
	for name, weeks := range doc {
		c := Course(name)
		if _, ok := l.hours[c]; !ok {
			l.hours[c] = make(map[Week]float64, len(weeks))
		}
		for key, h := range weeks {
			if w, ok := canonicalWeek(key); ok {
				l.hours[c][w] = h
				continue
			}
			l.SetRaw(c, key, h)
		}
	}
	l.Normalize()
	return l, nil
}

func canonicalWeek(key string) (Week, bool) {
	n, err := strconv.Atoi(key)
	if err != nil || strconv.Itoa(n) != key {
		return 0, false
	}
	return Week(n), true
}
