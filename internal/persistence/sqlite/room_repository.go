package sqlite

import (
	"context"
	"time"

	"github.com/Nico104/PlanningToolV2/internal/persistence"
)

// CreateRoom inserts a new room.
func (s *Store) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || room.Capacity < 0 {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rooms (id, name, capacity, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		room.ID, room.Name, room.Capacity,
		formatTimestamp(room.CreatedAt), formatTimestamp(room.UpdatedAt),
	)
	return mapError(err)
}

// UpdateRoom rewrites an existing room.
func (s *Store) UpdateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || room.Capacity < 0 {
		return persistence.ErrConstraintViolation
	}

	room.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx,
		`UPDATE rooms SET name = ?, capacity = ?, updated_at = ? WHERE id = ?`,
		room.Name, room.Capacity, formatTimestamp(room.UpdatedAt), room.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

// GetRoom retrieves a room by id.
func (s *Store) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, capacity, created_at, updated_at FROM rooms WHERE id = ?`, id)

	var (
		room      persistence.Room
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&room.ID, &room.Name, &room.Capacity, &createdAt, &updatedAt); err != nil {
		return persistence.Room{}, mapError(err)
	}
	var err error
	if room.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Room{}, err
	}
	if room.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Room{}, err
	}
	return room, nil
}

// ListRooms returns all rooms ordered by id.
func (s *Store) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, capacity, created_at, updated_at FROM rooms ORDER BY id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		var (
			room      persistence.Room
			createdAt string
			updatedAt string
		)
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if room.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		if room.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// DeleteRoom removes a room by id.
func (s *Store) DeleteRoom(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}
