package sqlite

import (
	"context"
	"testing"

	"github.com/lu-zhengda/assist/internal/domain"
)

func sessionFixture() domain.MailSession {
	return domain.MailSession{
		IntegrationID: "int-1",
		Filter:        domain.FilterUnread,
		Search:        "invoice",
		BaseQuery:     "label:work",
		Tokens:        []string{"", "t1", "t2"},
		PageIndex:     2,
		NextToken:     "t3",
	}
}

func TestGetMailSession_Default(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p, _ := db.EnsureProfile(ctx, "http://localhost:8000")

	got, err := db.GetMailSession(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetMailSession() error: %v", err)
	}
	if got.Filter != domain.FilterAll || len(got.Tokens) != 1 || got.Tokens[0] != "" || got.PageIndex != 0 {
		t.Errorf("default session = %+v", got)
	}
}

func TestSaveMailSession_Upsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p, _ := db.EnsureProfile(ctx, "http://localhost:8000")

	if err := db.SaveMailSession(ctx, p.ID, sessionFixture()); err != nil {
		t.Fatalf("SaveMailSession() error: %v", err)
	}
	got, err := db.GetMailSession(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetMailSession() error: %v", err)
	}
	if got.IntegrationID != "int-1" || got.Filter != domain.FilterUnread || got.Search != "invoice" {
		t.Errorf("session = %+v", got)
	}
	if len(got.Tokens) != 3 || got.Tokens[2] != "t2" || got.PageIndex != 2 || got.NextToken != "t3" {
		t.Errorf("cursor = %q index %d next %q", got.Tokens, got.PageIndex, got.NextToken)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("updated_at not set")
	}

	next := sessionFixture()
	next.Tokens = []string{""}
	next.PageIndex = 0
	next.NextToken = ""
	next.Filter = ""
	if err := db.SaveMailSession(ctx, p.ID, next); err != nil {
		t.Fatalf("second SaveMailSession() error: %v", err)
	}
	got, _ = db.GetMailSession(ctx, p.ID)
	if len(got.Tokens) != 1 || got.PageIndex != 0 || got.Filter != domain.FilterAll {
		t.Errorf("updated session = %+v", got)
	}
}

func TestClearMailSession(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p, _ := db.EnsureProfile(ctx, "http://localhost:8000")

	db.SaveMailSession(ctx, p.ID, sessionFixture())
	if err := db.ClearMailSession(ctx, p.ID); err != nil {
		t.Fatalf("ClearMailSession() error: %v", err)
	}
	got, _ := db.GetMailSession(ctx, p.ID)
	if got.IntegrationID != "" || got.PageIndex != 0 {
		t.Errorf("session after clear = %+v", got)
	}
}
