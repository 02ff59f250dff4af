package alexa

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/tomora/internal/observability/logger"
	"github.com/dropDatabas3/tomora/internal/store/core"
)

// maxListed acota la respuesta para que quepa en un turno de voz.
const maxListed = 10

type remindersService struct {
	repo core.Repository
}

// NewRemindersService crea el service de recordatorios de la skill.
func NewRemindersService(repo core.Repository) RemindersService {
	return &remindersService{repo: repo}
}

// List devuelve los recordatorios activos del usuario, los más próximos
// primero, hasta maxListed.
func (s *remindersService) List(ctx context.Context, userID, userName string) (*ListResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("alexa.reminders.list"),
		logger.UserID(userID),
	)

	rows, err := s.repo.ListActiveReminders(ctx, userID, maxListed)
	if err != nil {
		log.Error("failed to list reminders", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// Slice vacío, no nil: el JSON tiene que ser [] y no null.
	views := make([]ReminderView, 0, len(rows))
	for _, r := range rows {
		views = append(views, ReminderView{
			ID:        r.ID,
			Title:     r.Title,
			Time:      r.ReminderTime,
			Recurring: r.Recurring,
		})
	}

	log.Debug("reminders listed", logger.Int("count", len(views)))
	return &ListResult{UserID: userID, UserName: userName, Reminders: views}, nil
}

// Create registra un recordatorio nuevo con origen "alexa".
func (s *remindersService) Create(ctx context.Context, userID string, req CreateRequest) (*CreateResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("alexa.reminders.create"),
		logger.UserID(userID),
	)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	when, err := parseReminderTime(req.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	recurring := strings.ToLower(strings.TrimSpace(req.Recurring))
	switch recurring {
	case "":
		recurring = "none"
	case "none", "daily", "weekly":
	default:
		return nil, fmt.Errorf("%w: unknown recurrence %q", ErrInvalidRequest, req.Recurring)
	}

	rec := &core.Reminder{
		UserID:       userID,
		Title:        title,
		ReminderTime: when,
		Recurring:    recurring,
		Active:       true,
		Source:       "alexa",
	}
	if err := s.repo.CreateReminder(ctx, rec); err != nil {
		log.Error("failed to create reminder", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	log.Info("reminder created", logger.String("reminder_id", rec.ID))
	return &CreateResult{
		Success: true,
		Reminder: CreatedReminder{
			ID:    rec.ID,
			Title: rec.Title,
			Time:  rec.ReminderTime,
		},
	}, nil
}

// parseReminderTime acepta RFC3339 y la variante sin zona que manda la skill.
func parseReminderTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("time is required")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", raw)
}
