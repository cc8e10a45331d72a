package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vms003/vatsal-medical/internal/models"
	"github.com/vms003/vatsal-medical/internal/store"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s, path
}

func readRaw(t *testing.T, path string) map[string]json.RawMessage {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return raw
}

func TestOpenCreatesDefaultDocument(t *testing.T) {
	_, path := openTemp(t)
	raw := readRaw(t, path)
	for _, key := range []string{"users", "medicines", "doctors", "prescriptions"} {
		if string(raw[key]) != "[]" {
			t.Errorf("expected %s to be [], got %s", key, raw[key])
		}
	}
}

func TestLoadResetsCorruptDocument(t *testing.T) {
	s, path := openTemp(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Users) != 0 || doc.Users == nil {
		t.Errorf("expected empty default users, got %#v", doc.Users)
	}
	if raw := readRaw(t, path); string(raw["users"]) != "[]" {
		t.Errorf("expected file to be reset, got %s", raw["users"])
	}
}

func TestLoadAddsMissingCollections(t *testing.T) {
	s, path := openTemp(t)
	content := `{"users":[{"id":3,"name":"A","email":"a@example.com","password_hash":"h","language":"en"}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Users) != 1 || doc.Users[0].ID != 3 {
		t.Fatalf("expected existing user to survive, got %+v", doc.Users)
	}
	raw := readRaw(t, path)
	if string(raw["medicines"]) != "[]" || string(raw["prescriptions"]) != "[]" {
		t.Errorf("expected missing collections to be written, got %v", raw)
	}
}

func TestIDsAreMaxPlusOne(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)
	content := `{"users":[],"medicines":[{"id":7,"user_id":1,"name":"x","schedules":[]}],"doctors":[],"prescriptions":[]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := models.Medicine{UserID: 1, Name: "y"}
	if err := s.Medicines().Create(ctx, &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != 8 {
		t.Errorf("expected id 8, got %d", m.ID)
	}

	d := models.Doctor{UserID: 1, Name: "Dr"}
	if err := s.Doctors().Create(ctx, &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID != 1 {
		t.Errorf("expected first doctor id 1, got %d", d.ID)
	}
}

func TestUserEmailUnique(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	if err := s.Users().Create(ctx, &models.User{Name: "A", Email: "a@example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := s.Users().Create(ctx, &models.User{Name: "B", Email: "A@Example.com"})
	if !errors.Is(err, store.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	u, err := s.Users().GetByEmail(ctx, "A@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Name != "A" {
		t.Errorf("expected user A, got %q", u.Name)
	}
	if _, err := s.Users().GetByID(ctx, 99); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOwnerScoping(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	p := models.Prescription{UserID: 1, Filename: "1_1_a.pdf", URL: "/uploads/1_1_a.pdf"}
	if err := s.Prescriptions().Create(ctx, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if list, _ := s.Prescriptions().ListByUser(ctx, 2); len(list) != 0 {
		t.Errorf("expected no prescriptions for user 2, got %d", len(list))
	}
	if _, err := s.Prescriptions().Delete(ctx, 2, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	list, _ := s.Prescriptions().ListByUser(ctx, 1)
	if len(list) != 1 || list[0].URL != "" {
		t.Errorf("expected stored record without url, got %+v", list)
	}

	removed, err := s.Prescriptions().Delete(ctx, 1, p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed.Filename != "1_1_a.pdf" {
		t.Errorf("expected removed record to be returned, got %+v", removed)
	}
}

func TestUpdateKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	d := models.Doctor{UserID: 1, Name: "Dr", Phone: "1"}
	if err := s.Doctors().Create(ctx, &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := s.Doctors().Update(ctx, 1, d.ID, func(x *models.Doctor) error {
		x.ID, x.UserID, x.Phone = 99, 2, "2"
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, _ := s.Doctors().ListByUser(ctx, 1)
	if len(list) != 1 || list[0].ID != d.ID || list[0].Phone != "2" {
		t.Errorf("unexpected doctors after update: %+v", list)
	}

	boom := errors.New("boom")
	err = s.Doctors().Update(ctx, 1, d.ID, func(x *models.Doctor) error {
		x.Phone = "3"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected mutate error, got %v", err)
	}
	list, _ = s.Doctors().ListByUser(ctx, 1)
	if list[0].Phone != "2" {
		t.Errorf("expected failed update to leave record untouched, got %q", list[0].Phone)
	}
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	dst, _ := openTemp(t)
	if err := dst.Users().Create(ctx, &models.User{Name: "Existing", Email: "taken@example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc := NewDocument()
	doc.Users = []models.User{
		{ID: 10, Name: "New", Email: "new@example.com"},
		{ID: 11, Name: "Dup", Email: "taken@example.com"},
	}
	doc.Medicines = []models.Medicine{
		{ID: 5, UserID: 10, Name: "A", Schedules: []models.Schedule{{Time: "08:00:00", Days: []string{"mon"}}}},
		{ID: 6, UserID: 11, Name: "B"},
	}
	doc.Doctors = []models.Doctor{{ID: 1, UserID: 10, Name: "Dr"}}
	doc.Prescriptions = []models.Prescription{{ID: 1, UserID: 12, Filename: "orphan.pdf"}}

	stats, err := Import(ctx, doc, dst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Users != 1 || stats.Medicines != 1 || stats.Doctors != 1 || stats.Prescriptions != 0 || stats.Skipped != 3 {
		t.Errorf("unexpected stats %+v", stats)
	}

	u, err := dst.Users().GetByEmail(ctx, "new@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	meds, _ := dst.Medicines().ListByUser(ctx, u.ID)
	if len(meds) != 1 || meds[0].Schedules[0].Time != "08:00:00" {
		t.Errorf("expected medicine remapped to new user, got %+v", meds)
	}
}

func TestReadDocumentDoesNotRepair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ReadDocument(path); err == nil {
		t.Error("expected error for corrupt document")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "{broken" {
		t.Errorf("expected file to be left untouched, got %q", data)
	}

	if err := os.WriteFile(path, []byte(`{"users":[]}`), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, err := ReadDocument(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Medicines == nil {
		t.Error("expected missing collections to default to empty")
	}
}
