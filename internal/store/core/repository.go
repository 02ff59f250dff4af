package core

import "context"

// Repository es el contrato que el core OAuth consume del data store.
// Las operaciones son lookups síncronos y opacos: un fallo de infraestructura
// se reporta como ErrUnavailable (envuelto) y el caller lo superficializa
// como 500, sin retries.
type Repository interface {
	Ping(ctx context.Context) error
	Close()

	// Credenciales
	CreateUser(ctx context.Context, u *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)

	// Recordatorios (superficie mínima que usa la skill)
	ListActiveReminders(ctx context.Context, userID string, limit int) ([]Reminder, error)
	CreateReminder(ctx context.Context, r *Reminder) error
}
