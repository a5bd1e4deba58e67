package http

import (
	"errors"
	"net/http"

	"studytracker/internal/core"
	"studytracker/internal/log"
	"studytracker/internal/services"
)

// Handler serves the tracker API. It only translates between HTTP and the
// tracker; every decision is made by services.Tracker.
type Handler struct {
	tracker *services.Tracker
}

func NewHandler(tracker *services.Tracker) *Handler {
	return &Handler{tracker: tracker}
}

// SnapshotResponse is the body of GET /api/snapshot.
type SnapshotResponse struct {
	Snapshot     core.Snapshot `json:"snapshot"`
	SelectedWeek core.Week     `json:"selected_week"`
	ShowAll      bool          `json:"show_all"`
	VisibleWeeks []core.Week   `json:"visible_weeks"`
	GrandTotal   float64       `json:"grand_total"`
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Courses handles GET /api/courses
func (h *Handler) Courses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.tracker.Courses())
}

// Weeks handles GET /api/weeks
func (h *Handler) Weeks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.tracker.Weeks())
}

// Snapshot handles GET /api/snapshot?week=N&all=bool
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	params, err := ParseSnapshotParams(r.URL.Query())
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, core.ErrUnknownWeek) {
			status = http.StatusNotFound
		}
		writeError(w, r, status, err.Error())
		return
	}

	snap := h.tracker.Snapshot()
	writeJSON(w, r, http.StatusOK, SnapshotResponse{
		Snapshot:     snap,
		SelectedWeek: params.Week,
		ShowAll:      params.ShowAll,
		VisibleWeeks: core.VisibleWeeks(params.Week, params.ShowAll),
		GrandTotal:   snap.GrandTotalFor(params.Week),
	})
}

// CreateEntry handles POST /api/entries
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(w, r)
	if err := parser.Parse(); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Malformed entry body",
			log.NewFields().WithError(err).WithErrorType(log.ErrorTypeValidation).WithOperation(log.OpSubmit).ToSlice()...)
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	res := h.tracker.SubmitText(r.Context(), parser.Get("course"), parser.Get("week"), parser.Get("hours"))
	writeJSON(w, r, statusFor(res.Kind), res)
}

func statusFor(kind services.ResultKind) int {
	switch kind {
	case services.ResultOK:
		return http.StatusOK
	case services.ResultValidation:
		return http.StatusUnprocessableEntity
	case services.ResultUnknownCourse, services.ResultUnknownWeek:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
