package core

import "time"

// User es el registro de credenciales/perfil del dueño de los recordatorios.
// PasswordHash es un PHC string argon2id (nunca texto plano).
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	IsMedicated  bool
	IsCaregiver  bool
	LinkedID     *string
	CreatedAt    time.Time
}

// Reminder es un recordatorio de medicación.
type Reminder struct {
	ID           string
	UserID       string
	Title        string
	ReminderTime time.Time
	Recurring    string // none | daily | weekly
	Active       bool
	Source       string // app | alexa
	CreatedAt    time.Time
}
