package application

import (
	"context"
	"log/slog"

	"github.com/Nico104/PlanningToolV2/internal/persistence"
	"github.com/Nico104/PlanningToolV2/internal/timetable"
)

// AvailabilityService answers free-slot queries for a room on a given day
// using the configured working-day bounds and planning grid.
type AvailabilityService struct {
	appointments AppointmentRepository
	rooms        RoomCatalog
	options      timetable.AvailabilityOptions
	logger       *slog.Logger
}

// NewAvailabilityService creates an AvailabilityService with the default logger.
func NewAvailabilityService(appointments AppointmentRepository, rooms RoomCatalog, options timetable.AvailabilityOptions) *AvailabilityService {
	return NewAvailabilityServiceWithLogger(appointments, rooms, options, nil)
}

// NewAvailabilityServiceWithLogger creates an AvailabilityService with an
// explicit logger.
func NewAvailabilityServiceWithLogger(appointments AppointmentRepository, rooms RoomCatalog, options timetable.AvailabilityOptions, logger *slog.Logger) *AvailabilityService {
	return &AvailabilityService{
		appointments: appointments,
		rooms:        rooms,
		options:      options,
		logger:       defaultLogger(logger),
	}
}

func (s *AvailabilityService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AvailabilityService", operation, attrs...)
}

// FindFreeSlots returns the grid-aligned room windows on the requested day
// that can hold an appointment of the requested duration.
func (s *AvailabilityService) FindFreeSlots(ctx context.Context, params FreeSlotsParams) ([]timetable.Window, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if params.Principal.UserID == "" {
		return nil, ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "FindFreeSlots",
		"room_id", params.RoomID,
		"date", params.Date.Format("2006-01-02"),
	)

	if err := validateFreeSlotsParams(params); err != nil {
		logger.ErrorContext(ctx, "free slot query rejected", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}

	if _, err := s.rooms.GetRoom(ctx, params.RoomID); err != nil {
		return nil, mapPersistenceError(err)
	}

	records, err := s.appointments.ListAppointments(ctx, persistence.AppointmentFilter{RoomID: params.RoomID})
	if err != nil {
		logger.ErrorContext(ctx, "appointment load failed", "error", err, "error_kind", ErrorKind(err))
		return nil, mapPersistenceError(err)
	}

	windows, err := timetable.FindFreeSlots(toTimetableAppointments(records), params.RoomID, params.Date, params.DurationMinutes, s.options)
	if err != nil {
		logger.ErrorContext(ctx, "free slot search failed", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}

	logger.InfoContext(ctx, "free slot search completed", "window_count", len(windows))
	return windows, nil
}

func validateFreeSlotsParams(params FreeSlotsParams) error {
	vErr := &ValidationError{}
	if params.RoomID == "" {
		vErr.add("room_id", "room is required")
	}
	if params.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if params.DurationMinutes <= 0 {
		vErr.add("duration_minutes", "duration must be positive")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
