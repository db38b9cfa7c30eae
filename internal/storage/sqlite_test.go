package storage

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sample(handle string) StoredProfile {
	return StoredProfile{
		ID:              uuid.NewString(),
		Handle:          handle,
		Name:            "Iris Meyer",
		Role:            "founder",
		Company:         "Acme",
		Interests:       EncodeList([]string{"AI", "climbing"}),
		GoalsNextPeriod: EncodeList([]string{"raise a seed round"}),
		HelpOffers:      EncodeList([]string{"seed intros"}),
	}
}

func TestSaveAndGetProfile(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveProfile(sample("iris")); err != nil {
		t.Fatalf("saving: %v", err)
	}

	got, err := s.GetProfile("iris")
	if err != nil {
		t.Fatalf("getting: %v", err)
	}
	if got.Name != "Iris Meyer" || got.Role != "founder" {
		t.Errorf("got %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetProfile("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveProfile_UpsertKeepsIdentity(t *testing.T) {
	s := openTestStore(t)

	first := sample("iris")
	if err := s.SaveProfile(first); err != nil {
		t.Fatalf("saving: %v", err)
	}
	stored, _ := s.GetProfile("iris")

	update := sample("iris")
	update.ID = uuid.NewString() // a new id must not replace the stored one
	update.Role = "cto"
	if err := s.SaveProfile(update); err != nil {
		t.Fatalf("updating: %v", err)
	}

	got, err := s.GetProfile("iris")
	if err != nil {
		t.Fatalf("getting: %v", err)
	}
	if got.ID != stored.ID {
		t.Errorf("upsert changed id: %s -> %s", stored.ID, got.ID)
	}
	if got.Role != "cto" {
		t.Errorf("role = %q", got.Role)
	}
	if !got.CreatedAt.Equal(stored.CreatedAt) {
		t.Error("upsert changed created_at")
	}

	profiles, err := s.ListProfiles()
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(profiles) != 1 {
		t.Errorf("expected single row after upsert, got %d", len(profiles))
	}
}

func TestListProfiles_Ordered(t *testing.T) {
	s := openTestStore(t)
	for _, h := range []string{"zoe", "amir", "iris"} {
		if err := s.SaveProfile(sample(h)); err != nil {
			t.Fatalf("saving %s: %v", h, err)
		}
	}

	profiles, err := s.ListProfiles()
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	var handles []string
	for _, p := range profiles {
		handles = append(handles, p.Handle)
	}
	if !reflect.DeepEqual(handles, []string{"amir", "iris", "zoe"}) {
		t.Errorf("handles = %v", handles)
	}
}

func TestDeleteProfile(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveProfile(sample("iris")); err != nil {
		t.Fatalf("saving: %v", err)
	}
	if err := s.DeleteProfile("iris"); err != nil {
		t.Fatalf("deleting: %v", err)
	}
	if _, err := s.GetProfile("iris"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteProfile("iris"); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete should be ErrNotFound, got %v", err)
	}
}

func TestRecordConversion(t *testing.T) {
	p := sample("iris")
	rec := p.Record()

	if rec["name"] != "Iris Meyer" {
		t.Errorf("name = %v", rec["name"])
	}
	if !reflect.DeepEqual(rec["interests"], []string{"AI", "climbing"}) {
		t.Errorf("interests = %v", rec["interests"])
	}
	if _, ok := rec["school"]; ok {
		t.Error("empty fields must be absent from the record, not empty strings")
	}
}

func TestMigrationsApplied(t *testing.T) {
	s := openTestStore(t)
	// Re-running migrate must be a no-op.
	if err := s.migrate(); err != nil {
		t.Fatalf("re-migrate: %v", err)
	}
}
