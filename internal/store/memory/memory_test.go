package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dropDatabas3/tomora/internal/store/core"
	"github.com/dropDatabas3/tomora/internal/store/memory"
)

func TestCreateAndGetUser(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	u := &core.User{Email: "Ana@Example.com", Name: "Ana", PasswordHash: "x"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == "" {
		t.Fatal("CreateUser no asignó ID")
	}

	// Lookup por email, case-insensitive
	got, err := s.GetUserByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("id mismatch: %s vs %s", got.ID, u.ID)
	}

	got, err = s.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Email != "ana@example.com" {
		t.Fatalf("email no normalizado: %q", got.Email)
	}

	if _, err := s.GetUserByID(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	if err := s.CreateUser(ctx, &core.User{Email: "ana@example.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := s.CreateUser(ctx, &core.User{Email: "ANA@example.com"})
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
}

func TestListActiveReminders_OrderAndLimit(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	u := &core.User{Email: "ana@example.com"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	base := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	// Insertados fuera de orden, uno inactivo, uno de otro usuario.
	for _, r := range []*core.Reminder{
		{UserID: u.ID, Title: "tercero", ReminderTime: base.Add(2 * time.Hour), Active: true},
		{UserID: u.ID, Title: "primero", ReminderTime: base, Active: true},
		{UserID: u.ID, Title: "inactivo", ReminderTime: base.Add(time.Minute), Active: false},
		{UserID: u.ID, Title: "segundo", ReminderTime: base.Add(time.Hour), Active: true},
	} {
		if err := s.CreateReminder(ctx, r); err != nil {
			t.Fatalf("create reminder %q: %v", r.Title, err)
		}
	}

	got, err := s.ListActiveReminders(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"primero", "segundo", "tercero"}
	if len(got) != len(want) {
		t.Fatalf("len=%d, want %d", len(got), len(want))
	}
	for i, title := range want {
		if got[i].Title != title {
			t.Fatalf("pos %d: %q, want %q", i, got[i].Title, title)
		}
	}

	limited, err := s.ListActiveReminders(ctx, u.ID, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limit ignorado: len=%d", len(limited))
	}
}

func TestCreateReminder_UnknownUser(t *testing.T) {
	s := memory.New()
	err := s.CreateReminder(context.Background(), &core.Reminder{UserID: "nope", Title: "x"})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
