package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tutomatics/internal/export"
	"tutomatics/internal/metrics"
	"tutomatics/internal/models"
)

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.proposeBooking(w, r)
	case http.MethodGet:
		s.listBookings(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) proposeBooking(w http.ResponseWriter, r *http.Request) {
	type request struct {
		StudentID     int64  `json:"student_id"`
		StartTime     string `json:"start_time"`
		LessonMinutes int    `json:"lesson_minutes"`
	}

	var body request
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.StudentID <= 0 {
		writeError(w, http.StatusBadRequest, "student_id is required")
		return
	}

	startTime, err := parseTimestamp(body.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_time; expected RFC3339")
		return
	}

	booking, err := s.bookings.ProposeBooking(r.Context(), body.StudentID, startTime, body.LessonMinutes)
	if err != nil {
		metrics.IncBookingOutcome("propose", "rejected")
		writeServiceError(w, err)
		return
	}

	metrics.IncBookingOutcome("propose", "ok")
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookings, err := s.bookings.GetBookingsByDateRange(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleBooking(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	bookingID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		booking, err := s.bookings.GetBooking(r.Context(), bookingID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, booking)
		return
	}

	if len(parts) != 2 || r.Method != http.MethodPost {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	type request struct {
		ActorID int64 `json:"actor_id"`
	}
	var body request
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch parts[1] {
	case "accept":
		booking, err := s.bookings.AcceptBooking(r.Context(), bookingID, body.ActorID)
		if err != nil {
			metrics.IncBookingOutcome("accept", "rejected")
			writeServiceError(w, err)
			return
		}
		metrics.IncBookingOutcome("accept", "ok")
		writeJSON(w, http.StatusOK, booking)
	case "deny":
		if err := s.bookings.DenyBooking(r.Context(), bookingID, body.ActorID); err != nil {
			metrics.IncBookingOutcome("deny", "rejected")
			writeServiceError(w, err)
			return
		}
		metrics.IncBookingOutcome("deny", "ok")
		writeJSON(w, http.StatusOK, map[string]string{"status": models.BookingStatusDenied})
	case "cancel":
		if err := s.bookings.CancelBooking(r.Context(), bookingID, body.ActorID); err != nil {
			metrics.IncBookingOutcome("cancel", "rejected")
			writeServiceError(w, err)
			return
		}
		metrics.IncBookingOutcome("cancel", "ok")
		writeJSON(w, http.StatusOK, map[string]string{"status": models.BookingStatusCancelled})
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleStudentBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/students/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[1] != "bookings" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	studentID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	bookings, err := s.bookings.GetStudentBookings(r.Context(), studentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var window models.Availability
		if err := decodeJSON(r, &window); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if window.TutorID <= 0 {
			writeError(w, http.StatusBadRequest, "tutor_id is required")
			return
		}
		if err := s.availability.CreateWindow(r.Context(), &window); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, window)
	case http.MethodGet:
		tutorID, err := queryInt64(r, "tutor_id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "tutor_id is required")
			return
		}
		windows, err := s.availability.ListWindows(r.Context(), tutorID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"windows": windows})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleAvailabilityWindow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/availability/"), "/")
	windowID, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid window id")
		return
	}

	ownerID, err := queryInt64(r, "owner_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "owner_id is required")
		return
	}

	if err := s.availability.DeleteWindow(r.Context(), windowID, ownerID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *HTTPServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start, end, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	daily, err := s.bookings.GetDailyBookings(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	type calendarEntry struct {
		models.Booking
		Color string `json:"color"`
	}

	days := make(map[string][]calendarEntry, len(daily))
	for day, bookings := range daily {
		entries := make([]calendarEntry, 0, len(bookings))
		for _, b := range bookings {
			entries = append(entries, calendarEntry{Booking: b, Color: b.DisplayColor()})
		}
		days[day] = entries
	}

	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

func (s *HTTPServer) handleSignups(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		type request struct {
			Email    string `json:"email"`
			Username string `json:"username"`
			Password string `json:"password"`
		}
		var body request
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if body.Email == "" || body.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}
		user, err := s.users.Signup(r.Context(), body.Username, body.Email, body.Password)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	case http.MethodGet:
		pending, err := s.users.ListPendingSignups(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"signups": pending})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleUserAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/users/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	switch parts[1] {
	case "approve":
		if err := s.users.ApproveSignup(r.Context(), userID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": models.UserStatusApproved})
	case "deny":
		if err := s.users.DenySignup(r.Context(), userID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "denied"})
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID, err := queryInt64(r, "user_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	notifications, err := s.repo.GetUserNotifications(r.Context(), userID, unreadOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

func (s *HTTPServer) handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/notifications/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[1] != "read" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	notificationID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := s.repo.MarkNotificationRead(r.Context(), notificationID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start, end, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	daily, err := s.bookings.GetDailyBookings(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	fileName := fmt.Sprintf("bookings_%s_to_%s.xlsx",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	if err := export.WriteBookingsReport(w, daily, start, end); err != nil {
		s.logger.Error().Err(err).Msg("failed to write bookings report")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func queryInt64(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	return strconv.ParseInt(raw, 10, 64)
}

// parseTimestamp accepts RFC3339 or "2006-01-02 15:04" and normalizes to UTC.
func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02 15:04", raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// parseDateRange reads from/to query params as YYYY-MM-DD and returns the
// inclusive range [from 00:00, to 24:00).
func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	fromStr := strings.TrimSpace(r.URL.Query().Get("from"))
	toStr := strings.TrimSpace(r.URL.Query().Get("to"))
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("from and to are required")
	}

	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from date; expected YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid to date; expected YYYY-MM-DD")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to must not be before from")
	}

	return from, to.Add(24 * time.Hour), nil
}
