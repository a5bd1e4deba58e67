package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	Physics     Course = "Physics"
	Programming Course = "Programming"
	Math        Course = "Math"
	Engineering Course = "Engineering"
	Other       Course = "Other"
)

const (
	FirstWeek Week = 1
	LastWeek  Week = 14
)

type (
	// Course is one of the fixed categories hours are tracked under.
	Course string

	// Week is a numbered study week in [FirstWeek, LastWeek].
	Week int
)

var (
	ErrValidation    = errors.New("invalid hours")
	ErrUnknownCourse = errors.New("unknown course")
	ErrUnknownWeek   = errors.New("unknown week")
)

var courses = []Course{Physics, Programming, Math, Engineering, Other}

// Courses returns the fixed course set in display order.
func Courses() []Course {
	return append([]Course(nil), courses...)
}

// Weeks returns the fixed week range in ascending order.
func Weeks() []Week {
	out := make([]Week, 0, int(LastWeek-FirstWeek)+1)
	for w := FirstWeek; w <= LastWeek; w++ {
		out = append(out, w)
	}
	return out
}

func (c Course) String() string {
	return string(c)
}

// Valid reports whether c belongs to the fixed course set.
func (c Course) Valid() bool {
	switch c {
	case Physics, Programming, Math, Engineering, Other:
		return true
	default:
		return false
	}
}

// Validate returns ErrUnknownCourse for courses outside the fixed set.
func (c Course) Validate() error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCourse, string(c))
	}
	return nil
}

func (w Week) String() string {
	return strconv.Itoa(int(w))
}

// Valid reports whether w lies in the fixed week range.
func (w Week) Valid() bool {
	return w >= FirstWeek && w <= LastWeek
}

// Validate returns ErrUnknownWeek for weeks outside the fixed range.
func (w Week) Validate() error {
	if !w.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownWeek, int(w))
	}
	return nil
}

// ParseCourse maps user or view text onto the fixed course set.
// Matching ignores surrounding whitespace and letter case.
func ParseCourse(s string) (Course, error) {
	s = strings.TrimSpace(s)
	for _, c := range courses {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCourse, s)
}

// ParseWeek parses a decimal week number and checks it against the fixed range.
func ParseWeek(s string) (Week, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownWeek, s)
	}
	w := Week(n)
	if err := w.Validate(); err != nil {
		return 0, err
	}
	return w, nil
}
