package alexa_test

import (
	"context"
	"errors"
	"testing"
	"time"

	svc "github.com/dropDatabas3/tomora/internal/http/services/alexa"
	"github.com/dropDatabas3/tomora/internal/store/core"
	"github.com/dropDatabas3/tomora/internal/store/memory"
)

func seedUser(t *testing.T, store *memory.Store) *core.User {
	t.Helper()
	u := &core.User{Email: "ana@example.com", Name: "Ana"}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestCreate_SetsSourceAndDefaults(t *testing.T) {
	store := memory.New()
	u := seedUser(t, store)
	s := svc.NewRemindersService(store)
	ctx := context.Background()

	res, err := s.Create(ctx, u.ID, svc.CreateRequest{
		Title: "Tomar losartana",
		Time:  "2026-09-02T08:00:00Z",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !res.Success || res.Reminder.ID == "" {
		t.Fatalf("resultado incompleto: %+v", res)
	}

	list, err := store.ListActiveReminders(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len=%d", len(list))
	}
	r := list[0]
	if r.Source != "alexa" {
		t.Errorf("source=%q, want alexa", r.Source)
	}
	if r.Recurring != "none" {
		t.Errorf("recurring=%q, want none por defecto", r.Recurring)
	}
	if !r.Active {
		t.Error("el recordatorio debería nacer activo")
	}
}

func TestCreate_Validation(t *testing.T) {
	store := memory.New()
	u := seedUser(t, store)
	s := svc.NewRemindersService(store)
	ctx := context.Background()

	cases := []svc.CreateRequest{
		{Title: "", Time: "2026-09-02T08:00:00Z"},
		{Title: "   ", Time: "2026-09-02T08:00:00Z"},
		{Title: "ok", Time: ""},
		{Title: "ok", Time: "mañana a las ocho"},
		{Title: "ok", Time: "2026-09-02T08:00:00Z", Recurring: "monthly"},
	}
	for i, req := range cases {
		if _, err := s.Create(ctx, u.ID, req); !errors.Is(err, svc.ErrInvalidRequest) {
			t.Errorf("caso %d: got %v, want ErrInvalidRequest", i, err)
		}
	}
}

func TestCreate_AcceptsLocalTimestamp(t *testing.T) {
	store := memory.New()
	u := seedUser(t, store)
	s := svc.NewRemindersService(store)

	res, err := s.Create(context.Background(), u.ID, svc.CreateRequest{
		Title: "Vitamina D",
		Time:  "2026-09-02T08:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	want := time.Date(2026, 9, 2, 8, 0, 0, 0, time.UTC)
	if !res.Reminder.Time.Equal(want) {
		t.Fatalf("time=%v, want %v", res.Reminder.Time, want)
	}
}

func TestList_CapsAtTenSoonestFirst(t *testing.T) {
	store := memory.New()
	u := seedUser(t, store)
	s := svc.NewRemindersService(store)
	ctx := context.Background()

	base := time.Date(2026, 9, 2, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		err := store.CreateReminder(ctx, &core.Reminder{
			UserID:       u.ID,
			Title:        "r",
			ReminderTime: base.Add(time.Duration(15-i) * time.Hour),
			Active:       true,
		})
		if err != nil {
			t.Fatalf("seed reminder: %v", err)
		}
	}

	res, err := s.List(ctx, u.ID, u.Name)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.UserID != u.ID || res.UserName != "Ana" {
		t.Fatalf("identidad: %+v", res)
	}
	if len(res.Reminders) != 10 {
		t.Fatalf("len=%d, want 10", len(res.Reminders))
	}
	for i := 1; i < len(res.Reminders); i++ {
		if res.Reminders[i].Time.Before(res.Reminders[i-1].Time) {
			t.Fatal("no está ordenado por hora ascendente")
		}
	}
}

func TestList_EmptyIsSliceNotNil(t *testing.T) {
	store := memory.New()
	u := seedUser(t, store)
	s := svc.NewRemindersService(store)

	res, err := s.List(context.Background(), u.ID, u.Name)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Reminders == nil {
		t.Fatal("Reminders debería ser [] y no null en JSON")
	}
}
