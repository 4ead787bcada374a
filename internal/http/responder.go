package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Nico104/PlanningToolV2/internal/application"
)

var (
	errBadRequestBody      = errors.New("Ungültiges Anfrageformat.")
	errInvalidID           = errors.New("Ungültige Kennung.")
	errMissingSessionToken = errors.New("Bitte geben Sie ein Sitzungstoken an.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "Sie sind nicht berechtigt, diese Aktion auszuführen.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "Die angeforderte Ressource wurde nicht gefunden."})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "Eine Ressource mit dieser Kennung existiert bereits."})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Die Eingaben sind fehlerhaft.",
				Errors:  localizeValidationErrors(vErr),
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Es ist ein interner Fehler aufgetreten."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Die Anfrage ist fehlerhaft."
	case http.StatusUnauthorized:
		return "Anmeldung erforderlich."
	case http.StatusForbidden:
		return "Sie sind nicht berechtigt, diese Aktion auszuführen."
	case http.StatusNotFound:
		return "Die angeforderte Ressource wurde nicht gefunden."
	case http.StatusConflict:
		return "Die Anfrage steht im Konflikt mit dem aktuellen Zustand der Ressource."
	case http.StatusUnprocessableEntity:
		return "Die Eingaben sind fehlerhaft."
	default:
		return "Es ist ein interner Fehler aufgetreten."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "id is required":
		return "Eine Kennung ist erforderlich."
	case "course is required":
		return "Eine Lehrveranstaltung ist erforderlich."
	case "course does not exist":
		return "Die angegebene Lehrveranstaltung existiert nicht."
	case "type not allowed for course":
		return "Dieser Termintyp ist für die Lehrveranstaltung nicht zulässig."
	case "duration must not be negative":
		return "Die Dauer darf nicht negativ sein."
	case "duration must be positive":
		return "Die Dauer muss positiv sein."
	case "start must fall within the day":
		return "Die Startzeit muss innerhalb des Tages liegen."
	case "group size must be positive":
		return "Die Gruppengröße muss positiv sein."
	case "room does not exist":
		return "Der angegebene Raum existiert nicht."
	case "room is required":
		return "Ein Raum ist erforderlich."
	case "date is required":
		return "Ein Datum ist erforderlich."
	case "name is required":
		return "Ein Name ist erforderlich."
	case "capacity must be positive":
		return "Die Kapazität muss positiv sein."
	case "lecturer email is required":
		return "Die E-Mail-Adresse der Lehrperson ist erforderlich."
	case "lecturer email is invalid":
		return "Die E-Mail-Adresse der Lehrperson ist ungültig."
	case "email is required":
		return "Eine E-Mail-Adresse ist erforderlich."
	case "email is invalid":
		return "Die E-Mail-Adresse ist ungültig."
	case "display name is required":
		return "Ein Anzeigename ist erforderlich."
	case "password is required":
		return "Ein Passwort ist erforderlich."
	case "password must be at least 8 characters":
		return "Das Passwort muss mindestens 8 Zeichen lang sein."
	case "cannot delete own account":
		return "Das eigene Konto kann nicht gelöscht werden."
	case "key is required":
		return "Ein Regelschlüssel ist erforderlich."
	case "unknown rule key":
		return "Unbekannter Regelschlüssel."
	case "must be between 0 and 100":
		return "Der Wert muss zwischen 0 und 100 liegen."
	case "must not be negative":
		return "Der Wert darf nicht negativ sein."
	case "must not be below min_duration_minutes":
		return "Die Höchstdauer darf die Mindestdauer nicht unterschreiten."
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
