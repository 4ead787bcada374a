package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Nico104/PlanningToolV2/internal/persistence"
	"github.com/Nico104/PlanningToolV2/internal/timetable"
)

// RoomRepository captures the persistence interactions needed by the room
// service.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room persistence.Room) error
	UpdateRoom(ctx context.Context, room persistence.Room) error
	GetRoom(ctx context.Context, id string) (persistence.Room, error)
	ListRooms(ctx context.Context) ([]persistence.Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// RoomService manages the room catalog.
type RoomService struct {
	rooms       RoomRepository
	invalidator CacheInvalidator
	now         func() time.Time
	logger      *slog.Logger
}

// NewRoomService wires dependencies for room operations.
func NewRoomService(rooms RoomRepository, invalidator CacheInvalidator, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(rooms, invalidator, now, nil)
}

// NewRoomServiceWithLogger constructs a RoomService with a specified logger.
func NewRoomServiceWithLogger(rooms RoomRepository, invalidator CacheInvalidator, now func() time.Time, logger *slog.Logger) *RoomService {
	if now == nil {
		now = time.Now
	}
	return &RoomService{
		rooms:       rooms,
		invalidator: invalidator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// CreateRoom validates and stores a new room under the next R-prefixed id.
func (s *RoomService) CreateRoom(ctx context.Context, principal Principal, input RoomInput) (timetable.Room, error) {
	if s == nil {
		return timetable.Room{}, fmt.Errorf("RoomService is nil")
	}
	if principal.UserID == "" {
		return timetable.Room{}, ErrUnauthorized
	}
	if err := validateRoomInput(input); err != nil {
		return timetable.Room{}, err
	}

	existing, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return timetable.Room{}, mapPersistenceError(err)
	}
	ids := make([]string, 0, len(existing))
	for _, record := range existing {
		ids = append(ids, record.ID)
	}
	id := NextPrefixID("R", ids, 3)

	record := persistence.Room{ID: id, Name: input.Name, Capacity: input.Capacity}
	if err := s.rooms.CreateRoom(ctx, record); err != nil {
		return timetable.Room{}, mapPersistenceError(err)
	}

	s.invalidate()
	s.loggerWith(ctx, "CreateRoom", "room_id", id).InfoContext(ctx, "room created")
	return toTimetableRoom(record), nil
}

// UpdateRoom validates and stores changes to a room.
func (s *RoomService) UpdateRoom(ctx context.Context, principal Principal, id string, input RoomInput) (timetable.Room, error) {
	if principal.UserID == "" {
		return timetable.Room{}, ErrUnauthorized
	}
	if err := validateRoomInput(input); err != nil {
		return timetable.Room{}, err
	}

	record := persistence.Room{ID: id, Name: input.Name, Capacity: input.Capacity}
	if err := s.rooms.UpdateRoom(ctx, record); err != nil {
		return timetable.Room{}, mapPersistenceError(err)
	}

	s.invalidate()
	s.loggerWith(ctx, "UpdateRoom", "room_id", id).InfoContext(ctx, "room updated")
	return toTimetableRoom(record), nil
}

// GetRoom returns a room by id.
func (s *RoomService) GetRoom(ctx context.Context, principal Principal, id string) (timetable.Room, error) {
	record, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return timetable.Room{}, mapPersistenceError(err)
	}
	return toTimetableRoom(record), nil
}

// ListRooms returns the full room catalog.
func (s *RoomService) ListRooms(ctx context.Context, principal Principal) ([]timetable.Room, error) {
	records, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	return toTimetableRooms(records), nil
}

// DeleteRoom removes a room from the catalog. Appointments referencing the
// room are left in place; the detector then reports the dangling reference
// by raw id.
func (s *RoomService) DeleteRoom(ctx context.Context, principal Principal, id string) error {
	if principal.UserID == "" {
		return ErrUnauthorized
	}
	if err := s.rooms.DeleteRoom(ctx, id); err != nil {
		return mapPersistenceError(err)
	}
	s.invalidate()
	s.loggerWith(ctx, "DeleteRoom", "room_id", id).InfoContext(ctx, "room deleted")
	return nil
}

func (s *RoomService) invalidate() {
	if s.invalidator != nil {
		s.invalidator.Invalidate()
	}
}

func validateRoomInput(input RoomInput) error {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
