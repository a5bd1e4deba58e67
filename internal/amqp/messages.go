package amqp

import (
	"encoding/json"
	"time"

	"studytracker/internal/core"
)

// EntryRecordedMessage announces an accepted study entry together with the
// totals it produced, so consumers never need to read the ledger.
type EntryRecordedMessage struct {
	Course      string    `json:"course"`
	Week        int       `json:"week"`
	Hours       float64   `json:"hours"`
	CellHours   float64   `json:"cell_hours"`
	CourseTotal float64   `json:"course_total"`
	WeekTotal   float64   `json:"week_total"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewEntryRecordedMessage builds the message for an entry. Entries without
// a timestamp are stamped with the current time.
func NewEntryRecordedMessage(e core.Entry) *EntryRecordedMessage {
	ts := e.RecordedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return &EntryRecordedMessage{
		Course:      string(e.Course),
		Week:        int(e.Week),
		Hours:       e.Hours,
		CellHours:   e.CellHours,
		CourseTotal: e.CourseTotal,
		WeekTotal:   e.WeekTotal,
		Timestamp:   ts,
	}
}

// ToJSON converts the message to JSON bytes
func (m *EntryRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryRecordedMessageFromJSON creates a message from JSON bytes
func EntryRecordedMessageFromJSON(data []byte) (*EntryRecordedMessage, error) {
	var msg EntryRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
