package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Nico104/PlanningToolV2/internal/timetable"
)

// Config captures environment driven configuration values for the planner
// service.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	SessionTTL      time.Duration
	DayStartMinutes int
	DayEndMinutes   int
	GridMinutes     int
	RuleConfigPath  string
	SeedDataDir     string
	AdminEmail      string
	AdminPassword   string
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to defaults matching a typical lecture day
// (08:00 to 21:00 on a 15 minute grid); invalid values are reported by
// variable name.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:planner.db?_foreign_keys=on",
		SessionTTL:      24 * time.Hour,
		DayStartMinutes: 8 * 60,
		DayEndMinutes:   21 * 60,
		GridMinutes:     15,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("PLANNER_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "PLANNER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("PLANNER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("PLANNER_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "PLANNER_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if startValue := strings.TrimSpace(os.Getenv("PLANNER_DAY_START")); startValue != "" {
		minutes, err := timetable.ParseClock(startValue)
		if err != nil {
			invalid = append(invalid, "PLANNER_DAY_START")
		} else {
			cfg.DayStartMinutes = minutes
		}
	}

	if endValue := strings.TrimSpace(os.Getenv("PLANNER_DAY_END")); endValue != "" {
		minutes, err := timetable.ParseClock(endValue)
		if err != nil {
			invalid = append(invalid, "PLANNER_DAY_END")
		} else {
			cfg.DayEndMinutes = minutes
		}
	}

	if gridValue := strings.TrimSpace(os.Getenv("PLANNER_GRID_MINUTES")); gridValue != "" {
		grid, err := strconv.Atoi(gridValue)
		if err != nil || grid <= 0 {
			invalid = append(invalid, "PLANNER_GRID_MINUTES")
		} else {
			cfg.GridMinutes = grid
		}
	}

	if path := strings.TrimSpace(os.Getenv("PLANNER_RULE_CONFIG")); path != "" {
		cfg.RuleConfigPath = path
	}

	if dir := strings.TrimSpace(os.Getenv("PLANNER_SEED_DATA_DIR")); dir != "" {
		cfg.SeedDataDir = dir
	}

	cfg.AdminEmail = strings.TrimSpace(os.Getenv("PLANNER_ADMIN_EMAIL"))
	cfg.AdminPassword = os.Getenv("PLANNER_ADMIN_PASSWORD")
	if cfg.AdminEmail != "" && cfg.AdminPassword == "" {
		invalid = append(invalid, "PLANNER_ADMIN_PASSWORD")
	}

	if cfg.DayEndMinutes <= cfg.DayStartMinutes {
		invalid = append(invalid, "PLANNER_DAY_END")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("ungültige Umgebungsvariablen: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
