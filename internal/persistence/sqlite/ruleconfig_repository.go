package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Nico104/PlanningToolV2/internal/persistence"
)

// UpsertRuleSetting inserts or replaces the configuration for one rule key.
func (s *Store) UpsertRuleSetting(ctx context.Context, setting persistence.RuleSetting) error {
	if setting.Key == "" {
		return persistence.ErrConstraintViolation
	}

	setting.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rule_settings (key, enabled, description, event_type,
			min_capacity_percent, min_duration_minutes, max_duration_minutes, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			enabled = excluded.enabled,
			description = excluded.description,
			event_type = excluded.event_type,
			min_capacity_percent = excluded.min_capacity_percent,
			min_duration_minutes = excluded.min_duration_minutes,
			max_duration_minutes = excluded.max_duration_minutes,
			updated_at = excluded.updated_at`,
		setting.Key,
		nullBool(setting.Enabled),
		setting.Description,
		setting.EventType,
		nullInt(setting.MinCapacityPercent),
		nullInt(setting.MinDurationMinutes),
		nullInt(setting.MaxDurationMinutes),
		formatTimestamp(setting.UpdatedAt),
	)
	return mapError(err)
}

// ListRuleSettings returns every stored rule configuration.
func (s *Store) ListRuleSettings(ctx context.Context) ([]persistence.RuleSetting, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, enabled, description, event_type, min_capacity_percent,
			min_duration_minutes, max_duration_minutes, updated_at
		 FROM rule_settings ORDER BY key`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var settings []persistence.RuleSetting
	for rows.Next() {
		var (
			setting     persistence.RuleSetting
			enabled     sql.NullInt64
			minCapacity sql.NullInt64
			minDuration sql.NullInt64
			maxDuration sql.NullInt64
			updatedAt   string
		)
		if err := rows.Scan(&setting.Key, &enabled, &setting.Description, &setting.EventType,
			&minCapacity, &minDuration, &maxDuration, &updatedAt); err != nil {
			return nil, err
		}
		setting.Enabled = scanBoolPtr(enabled)
		setting.MinCapacityPercent = scanIntPtr(minCapacity)
		setting.MinDurationMinutes = scanIntPtr(minDuration)
		setting.MaxDurationMinutes = scanIntPtr(maxDuration)
		if setting.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, setting)
	}
	return settings, rows.Err()
}

// DeleteRuleSetting removes the stored configuration for a rule key.
func (s *Store) DeleteRuleSetting(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM rule_settings WHERE key = ?`, key)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}
