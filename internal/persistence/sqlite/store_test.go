package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Nico104/PlanningToolV2/internal/persistence"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func intRef(v int) *int       { return &v }
func strRef(v string) *string { return &v }
func boolRef(v bool) *bool    { return &v }

func TestStoreAppointments(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	date := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	assigned := persistence.Appointment{
		ID:                 "T001",
		Name:               "VO Signalverarbeitung",
		CourseID:           "C001",
		Type:               "lecture",
		Date:               &date,
		StartMinutes:       intRef(600),
		DurationMinutes:    90,
		RoomID:             "R001",
		GroupName:          strRef("G1"),
		GroupSize:          intRef(25),
		AttendanceRequired: true,
		Note:               "Beamer reservieren",
		SemesterID:         "S1",
	}
	unassigned := persistence.Appointment{
		ID:         "T002",
		Name:       "UE Signalverarbeitung",
		CourseID:   "C001",
		Type:       "exercise",
		SemesterID: "S1",
	}

	if err := store.CreateAppointment(ctx, assigned); err != nil {
		t.Fatalf("create assigned: %v", err)
	}
	if err := store.CreateAppointment(ctx, unassigned); err != nil {
		t.Fatalf("create unassigned: %v", err)
	}

	t.Run("roundtrip preserves optional fields", func(t *testing.T) {
		got, err := store.GetAppointment(ctx, "T001")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Date == nil || !got.Date.Equal(date) {
			t.Fatalf("date = %v, want %v", got.Date, date)
		}
		if got.StartMinutes == nil || *got.StartMinutes != 600 {
			t.Fatalf("start = %v, want 600", got.StartMinutes)
		}
		if got.GroupName == nil || *got.GroupName != "G1" || got.GroupSize == nil || *got.GroupSize != 25 {
			t.Fatalf("group = %v/%v", got.GroupName, got.GroupSize)
		}
		if !got.AttendanceRequired {
			t.Fatal("attendance flag lost")
		}

		blank, err := store.GetAppointment(ctx, "T002")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if blank.Date != nil || blank.StartMinutes != nil || blank.GroupName != nil {
			t.Fatalf("optional fields should stay nil: %+v", blank)
		}
	})

	t.Run("list orders unassigned first", func(t *testing.T) {
		got, err := store.ListAppointments(ctx, persistence.AppointmentFilter{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 2 || got[0].ID != "T002" || got[1].ID != "T001" {
			ids := make([]string, len(got))
			for i, a := range got {
				ids[i] = a.ID
			}
			t.Fatalf("order = %v, want [T002 T001]", ids)
		}
	})

	t.Run("filter narrows by room", func(t *testing.T) {
		got, err := store.ListAppointments(ctx, persistence.AppointmentFilter{RoomID: "R001"})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 1 || got[0].ID != "T001" {
			t.Fatalf("filtered list = %+v", got)
		}
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		err := store.CreateAppointment(ctx, assigned)
		if !errors.Is(err, persistence.ErrAlreadyExists) {
			t.Fatalf("err = %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("update and delete", func(t *testing.T) {
		assigned.DurationMinutes = 120
		if err := store.UpdateAppointment(ctx, assigned); err != nil {
			t.Fatalf("update: %v", err)
		}
		got, err := store.GetAppointment(ctx, "T001")
		if err != nil || got.DurationMinutes != 120 {
			t.Fatalf("after update: %+v, %v", got, err)
		}

		if err := store.DeleteAppointment(ctx, "T002"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := store.GetAppointment(ctx, "T002"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
		if err := store.DeleteAppointment(ctx, "T002"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("double delete err = %v, want ErrNotFound", err)
		}
	})
}

func TestStoreCourses(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	course := persistence.Course{
		ID:            "C001",
		Name:          "Signalverarbeitung",
		LecturerName:  "A. Huber",
		LecturerEmail: "huber@uni.example",
		AllowedTypes:  []string{"lecture", "exercise"},
	}
	if err := store.CreateCourse(ctx, course); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetCourse(ctx, "C001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.AllowedTypes) != 2 || got.AllowedTypes[0] != "lecture" || got.AllowedTypes[1] != "exercise" {
		t.Fatalf("allowed types = %v", got.AllowedTypes)
	}

	noTypes := persistence.Course{ID: "C002", Name: "Seminar", LecturerEmail: "x@uni.example"}
	if err := store.CreateCourse(ctx, noTypes); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err = store.GetCourse(ctx, "C002")
	if err != nil || len(got.AllowedTypes) != 0 {
		t.Fatalf("empty allowed types roundtrip: %v, %v", got.AllowedTypes, err)
	}
}

func TestStoreRuleSettings(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	setting := persistence.RuleSetting{
		Key:                "duration_warning",
		Enabled:            boolRef(true),
		Description:        "Standardzeiten",
		MinDurationMinutes: intRef(45),
		MaxDurationMinutes: intRef(180),
	}
	if err := store.UpsertRuleSetting(ctx, setting); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Second upsert replaces, not duplicates.
	setting.Enabled = boolRef(false)
	if err := store.UpsertRuleSetting(ctx, setting); err != nil {
		t.Fatalf("upsert again: %v", err)
	}

	settings, err := store.ListRuleSettings(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(settings) != 1 {
		t.Fatalf("got %d settings, want 1", len(settings))
	}
	got := settings[0]
	if got.Enabled == nil || *got.Enabled {
		t.Fatalf("enabled = %v, want false", got.Enabled)
	}
	if got.MinDurationMinutes == nil || *got.MinDurationMinutes != 45 {
		t.Fatalf("min duration = %v", got.MinDurationMinutes)
	}
	if got.MinCapacityPercent != nil {
		t.Fatalf("unset parameter should stay nil, got %v", got.MinCapacityPercent)
	}
}

func TestStoreUsersAndSessions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	user := persistence.User{
		ID:           "U001",
		Email:        "planner@uni.example",
		DisplayName:  "Planner",
		PasswordHash: "$argon2id$...",
		IsAdmin:      true,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	t.Run("email lookup is case-insensitive", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "PLANNER@uni.example")
		if err != nil || got.ID != "U001" {
			t.Fatalf("lookup: %+v, %v", got, err)
		}
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		dup := user
		dup.ID = "U002"
		if err := store.CreateUser(ctx, dup); !errors.Is(err, persistence.ErrAlreadyExists) {
			t.Fatalf("err = %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("session lifecycle", func(t *testing.T) {
		now := time.Now().UTC()
		session := persistence.Session{
			ID:        "SES1",
			UserID:    "U001",
			Token:     "token-1",
			ExpiresAt: now.Add(time.Hour),
		}
		if _, err := store.CreateSession(ctx, session); err != nil {
			t.Fatalf("create session: %v", err)
		}

		got, err := store.GetSession(ctx, "token-1")
		if err != nil || got.UserID != "U001" || got.RevokedAt != nil {
			t.Fatalf("get session: %+v, %v", got, err)
		}

		revoked, err := store.RevokeSession(ctx, "token-1", now)
		if err != nil {
			t.Fatalf("revoke: %v", err)
		}
		if revoked.RevokedAt == nil {
			t.Fatal("revoked_at not set")
		}
		if _, err := store.RevokeSession(ctx, "token-1", now); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("second revoke err = %v, want ErrNotFound", err)
		}

		if err := store.DeleteExpiredSessions(ctx, now.Add(2*time.Hour)); err != nil {
			t.Fatalf("cleanup: %v", err)
		}
		if _, err := store.GetSession(ctx, "token-1"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("session should be gone, err = %v", err)
		}
	})

	t.Run("deleting a user cascades to sessions", func(t *testing.T) {
		now := time.Now().UTC()
		if _, err := store.CreateSession(ctx, persistence.Session{
			ID: "SES2", UserID: "U001", Token: "token-2", ExpiresAt: now.Add(time.Hour),
		}); err != nil {
			t.Fatalf("create session: %v", err)
		}
		if err := store.DeleteUser(ctx, "U001"); err != nil {
			t.Fatalf("delete user: %v", err)
		}
		if _, err := store.GetSession(ctx, "token-2"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("session should cascade away, err = %v", err)
		}
	})
}
