// Package alexa contiene los services que consume la skill de voz una vez
// autenticada por account linking.
package alexa

import (
	"context"
	"errors"
	"time"
)

// RemindersService expone los recordatorios del usuario vinculado.
type RemindersService interface {
	List(ctx context.Context, userID, userName string) (*ListResult, error)
	Create(ctx context.Context, userID string, req CreateRequest) (*CreateResult, error)
}

// ReminderView es la proyección de un recordatorio hacia la skill.
type ReminderView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Time      time.Time `json:"time"`
	Recurring string    `json:"recurring"`
}

// ListResult es la respuesta de GET /alexa/reminders.
type ListResult struct {
	UserID    string         `json:"userId"`
	UserName  string         `json:"userName"`
	Reminders []ReminderView `json:"reminders"`
}

// CreateRequest es el body de POST /alexa/reminders.
type CreateRequest struct {
	Title     string `json:"title"`
	Time      string `json:"time"`
	Recurring string `json:"recurring"`
}

// CreatedReminder es el eco del recordatorio recién creado.
type CreatedReminder struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Time  time.Time `json:"time"`
}

// CreateResult es la respuesta de POST /alexa/reminders.
type CreateResult struct {
	Success  bool            `json:"success"`
	Reminder CreatedReminder `json:"reminder"`
}

var (
	ErrInvalidRequest   = errors.New("invalid_request")
	ErrStoreUnavailable = errors.New("store_unavailable")
)
