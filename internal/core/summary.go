package core

import "time"

// Snapshot is a read-only view of the ledger's aggregates for rendering.
type Snapshot struct {
	Courses      []Course                    `json:"courses"`
	Weeks        []Week                      `json:"weeks"`
	CourseTotals map[Course]float64          `json:"course_totals"`
	WeekTotals   map[Week]float64            `json:"week_totals"`
	Cells        map[Course]map[Week]float64 `json:"cells"`
	Total        float64                     `json:"total"`
}

// Snapshot computes every aggregate over the fixed course and week sets.
func (l *Ledger) Snapshot() Snapshot {
	s := Snapshot{
		Courses:      Courses(),
		Weeks:        Weeks(),
		CourseTotals: make(map[Course]float64, len(courses)),
		WeekTotals:   make(map[Week]float64, int(LastWeek-FirstWeek)+1),
		Cells:        make(map[Course]map[Week]float64, len(courses)),
	}
	for _, c := range s.Courses {
		row := make(map[Week]float64, len(s.Weeks))
		for _, w := range s.Weeks {
			row[w] = l.Hours(c, w)
		}
		s.Cells[c] = row
		s.CourseTotals[c], _ = l.CourseTotal(c)
	}
	for _, w := range s.Weeks {
		s.WeekTotals[w], _ = l.WeekTotal(w)
	}
	s.Total = l.Total()
	return s
}

// GrandTotalFor is the headline figure shown when a week is selected.
func (s Snapshot) GrandTotalFor(w Week) float64 {
	return s.WeekTotals[w]
}

// Hours returns the cell value captured in the snapshot.
func (s Snapshot) Hours(c Course, w Week) float64 {
	return s.Cells[c][w]
}

// VisibleWeeks applies the show-all-weeks display filter: every week when
// showAll is set, otherwise only the selected one. An out-of-range
// selection with showAll unset shows nothing.
func VisibleWeeks(selected Week, showAll bool) []Week {
	if showAll {
		return Weeks()
	}
	if !selected.Valid() {
		return nil
	}
	return []Week{selected}
}

// Entry describes one accepted hours submission and the totals it produced.
type Entry struct {
	Course      Course    `json:"course"`
	Week        Week      `json:"week"`
	Hours       float64   `json:"hours"`
	CellHours   float64   `json:"cell_hours"`
	CourseTotal float64   `json:"course_total"`
	WeekTotal   float64   `json:"week_total"`
	RecordedAt  time.Time `json:"recorded_at"`
}
