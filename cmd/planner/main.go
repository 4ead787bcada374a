package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Nico104/PlanningToolV2/internal/application"
	"github.com/Nico104/PlanningToolV2/internal/config"
	httptransport "github.com/Nico104/PlanningToolV2/internal/http"
	"github.com/Nico104/PlanningToolV2/internal/importer"
	"github.com/Nico104/PlanningToolV2/internal/logging"
	"github.com/Nico104/PlanningToolV2/internal/persistence"
	"github.com/Nico104/PlanningToolV2/internal/persistence/sqlite"
	"github.com/Nico104/PlanningToolV2/internal/timetable"
)

// systemPrincipal authorizes startup provisioning (bootstrap admin, seed
// data, rule config) that runs before any user can log in.
var systemPrincipal = application.Principal{UserID: "system", IsAdmin: true}

func main() {
	logger := logging.New(os.Stdout, slog.LevelInfo)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	now := time.Now
	availabilityOptions := timetable.AvailabilityOptions{
		DayStartMinutes: cfg.DayStartMinutes,
		DayEndMinutes:   cfg.DayEndMinutes,
		GridMinutes:     cfg.GridMinutes,
	}

	conflictService := application.NewConflictServiceWithLogger(storage, storage, storage, storage, now, logger)
	appointmentService := application.NewAppointmentServiceWithLogger(storage, storage, storage, conflictService, now, logger)
	roomService := application.NewRoomServiceWithLogger(storage, conflictService, now, logger)
	courseService := application.NewCourseServiceWithLogger(storage, conflictService, now, logger)
	availabilityService := application.NewAvailabilityServiceWithLogger(storage, storage, availabilityOptions, logger)
	userService := application.NewUserServiceWithLogger(storage, nil, nil, now, logger)
	authService := application.NewAuthServiceWithLogger(storage, storage, nil, nil, now, cfg.SessionTTL, logger)

	if err := bootstrapAdmin(ctx, userService, cfg, logger); err != nil {
		logger.Error("failed to provision bootstrap admin", "error", err)
		os.Exit(1)
	}
	if cfg.RuleConfigPath != "" {
		if err := applyRuleConfig(ctx, conflictService, cfg.RuleConfigPath); err != nil {
			logger.Error("failed to apply rule configuration", "error", err, "path", cfg.RuleConfigPath)
			os.Exit(1)
		}
		logger.Info("rule configuration applied", "path", cfg.RuleConfigPath)
	}
	if cfg.SeedDataDir != "" {
		seedFromDir(ctx, cfg.SeedDataDir, roomService, courseService, appointmentService, logger)
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(authService, logger),
		Users:        httptransport.NewUserHandler(userService, logger),
		Rooms:        httptransport.NewRoomHandler(roomService, availabilityService, logger),
		Courses:      httptransport.NewCourseHandler(courseService, logger),
		Appointments: httptransport.NewAppointmentHandler(appointmentService, logger),
		Conflicts:    httptransport.NewConflictHandler(conflictService, logger),
		Import:       httptransport.NewImportHandler(roomService, courseService, appointmentService, logger),
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.URL.Path, "/sessions") && r.Method == http.MethodPost {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("planner API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// bootstrapAdmin creates the configured admin account on first start. An
// existing account with the same email means a previous start already
// provisioned it.
func bootstrapAdmin(ctx context.Context, users *application.UserService, cfg config.Config, logger *slog.Logger) error {
	if cfg.AdminEmail == "" {
		return nil
	}

	_, err := users.CreateUser(ctx, application.CreateUserParams{
		Principal: systemPrincipal,
		Input: application.UserInput{
			Email:       cfg.AdminEmail,
			DisplayName: "Administrator",
			Password:    cfg.AdminPassword,
			IsAdmin:     true,
		},
	})
	if errors.Is(err, persistence.ErrAlreadyExists) || errors.Is(err, application.ErrAlreadyExists) {
		logger.Info("bootstrap admin already provisioned", "email", cfg.AdminEmail)
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("bootstrap admin created", "email", cfg.AdminEmail)
	return nil
}

func applyRuleConfig(ctx context.Context, conflicts *application.ConflictService, path string) error {
	inputs, err := importer.LoadRuleConfigFile(path)
	if err != nil {
		return err
	}
	for _, input := range inputs {
		if _, err := conflicts.UpdateRuleSetting(ctx, systemPrincipal, input); err != nil {
			return fmt.Errorf("rule %s: %w", input.Key, err)
		}
	}
	return nil
}

// seedFromDir imports rooms.csv, courses.csv and appointments.csv from the
// seed directory. Seeding is best effort: rejected rows are logged and the
// server starts regardless.
func seedFromDir(ctx context.Context, dir string, rooms *application.RoomService, courses *application.CourseService, appointments *application.AppointmentService, logger *slog.Logger) {
	if file, ok := openSeedFile(dir, "rooms.csv", logger); ok {
		inputs, rowErrors, err := importer.ParseRooms(file)
		file.Close()
		logSeedIssues(logger, "rooms.csv", rowErrors, err)
		for _, input := range inputs {
			if _, err := rooms.CreateRoom(ctx, systemPrincipal, input); err != nil {
				logger.Warn("seed room rejected", "name", input.Name, "error", err)
			}
		}
	}

	if file, ok := openSeedFile(dir, "courses.csv", logger); ok {
		inputs, rowErrors, err := importer.ParseCourses(file)
		file.Close()
		logSeedIssues(logger, "courses.csv", rowErrors, err)
		for _, input := range inputs {
			if _, err := courses.CreateCourse(ctx, systemPrincipal, input); err != nil {
				logger.Warn("seed course rejected", "name", input.Name, "error", err)
			}
		}
	}

	if file, ok := openSeedFile(dir, "appointments.csv", logger); ok {
		inputs, rowErrors, err := importer.ParseAppointments(file)
		file.Close()
		logSeedIssues(logger, "appointments.csv", rowErrors, err)
		for _, input := range inputs {
			params := application.CreateAppointmentParams{Principal: systemPrincipal, Input: input}
			if _, err := appointments.CreateAppointment(ctx, params); err != nil {
				logger.Warn("seed appointment rejected", "name", input.Name, "error", err)
			}
		}
	}
}

func openSeedFile(dir, name string, logger *slog.Logger) (*os.File, bool) {
	file, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to open seed file", "file", name, "error", err)
		}
		return nil, false
	}
	return file, true
}

func logSeedIssues(logger *slog.Logger, file string, rowErrors []importer.RowError, err error) {
	if err != nil {
		logger.Warn("failed to parse seed file", "file", file, "error", err)
		return
	}
	for _, rowErr := range rowErrors {
		logger.Warn("seed row rejected", "file", file, "line", rowErr.Line, "error", rowErr.Message)
	}
}
