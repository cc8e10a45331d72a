package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/vms003/vatsal-medical/internal/auth"
	"github.com/vms003/vatsal-medical/internal/config"
	"github.com/vms003/vatsal-medical/internal/events"
	"github.com/vms003/vatsal-medical/internal/storage"
	"github.com/vms003/vatsal-medical/internal/store/jsonstore"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	dir := t.TempDir()

	st, err := jsonstore.Open(filepath.Join(dir, "data", "store.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	files, err := storage.NewDiskStore(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:      "test-secret",
		JWTExpiry:      time.Hour,
		UploadMaxBytes: 1 << 20,
		CORSOrigins:    "*",
		StaticDir:      filepath.Join(dir, "no-frontend"),
	}
	return New(cfg, st, files, events.NopPublisher{})
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var body map[string]interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("expected JSON body for %s %s, got %q", req.Method, req.URL.Path, raw)
		}
	}
	return resp.StatusCode, body
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return do(t, app, req)
}

func register(t *testing.T, app *fiber.App, name, email string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/api/register", "", map[string]string{
		"name": name, "email": email, "password": "secret",
	})
	if status != http.StatusOK {
		t.Fatalf("register %s: expected 200, got %d (%v)", email, status, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("register %s: expected token, got %v", email, body)
	}
	return token
}

func uploadRequest(t *testing.T, token, doctor, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("doctor_name", doctor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		part.Write([]byte(content))
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload_prescription", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestPingAndHealth(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/api/ping", "", nil)
	if status != http.StatusOK || body["ok"] != true {
		t.Errorf("expected ok ping, got %d %v", status, body)
	}
	if _, err := time.Parse(time.RFC3339, fmt.Sprint(body["time"])); err != nil {
		t.Errorf("expected RFC3339 time, got %v", body["time"])
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/health", "", nil)
	if status != http.StatusOK || body["store"] != "ok" {
		t.Errorf("expected healthy store, got %d %v", status, body)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/api/medicines", "", nil)
	if status != http.StatusUnauthorized || body["error"] != "missing token" {
		t.Errorf("expected 401 missing token, got %d %v", status, body)
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/profile", "not-a-jwt", nil)
	if status != http.StatusUnauthorized || body["error"] != "invalid token" {
		t.Errorf("expected 401 invalid token, got %d %v", status, body)
	}

	for _, header := range []string{"Bearer", "Bearer ", "Bearer   "} {
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.Header.Set("Authorization", header)
		status, body = do(t, app, req)
		if status != http.StatusUnauthorized || body["error"] != "missing token" {
			t.Errorf("header %q: expected 401 missing token, got %d %v", header, status, body)
		}
	}
}

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims *auth.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return token
}

func TestProtectedRoutesRejectBadTokens(t *testing.T) {
	app := newTestApp(t)
	valid := register(t, app, "Ravi", "ravi@example.com")

	secret := []byte("test-secret")
	inAnHour := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	anHourAgo := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}

	tests := map[string]string{
		"expired":   signToken(t, jwt.SigningMethodHS256, secret, &auth.Claims{UserID: 1, RegisteredClaims: anHourAgo}),
		"other key": signToken(t, jwt.SigningMethodHS256, []byte("other"), &auth.Claims{UserID: 1, RegisteredClaims: inAnHour}),
		"tampered":  valid[:len(valid)-2] + "xx",
		"hs512":     signToken(t, jwt.SigningMethodHS512, secret, &auth.Claims{UserID: 1, RegisteredClaims: inAnHour}),
		"no exp":    signToken(t, jwt.SigningMethodHS256, secret, &auth.Claims{UserID: 1}),
		"no id":     signToken(t, jwt.SigningMethodHS256, secret, &auth.Claims{RegisteredClaims: inAnHour}),
		"unsigned":  signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, &auth.Claims{UserID: 1, RegisteredClaims: inAnHour}),
	}
	for name, token := range tests {
		status, body := doJSON(t, app, http.MethodGet, "/api/profile", token, nil)
		if status != http.StatusUnauthorized || body["error"] != "invalid token" {
			t.Errorf("%s: expected 401 invalid token, got %d %v", name, status, body)
		}
	}

	status, _ := doJSON(t, app, http.MethodGet, "/api/profile", valid, nil)
	if status != http.StatusOK {
		t.Errorf("expected 200 for a valid token, got %d", status)
	}
}

func TestRegisterLoginProfile(t *testing.T) {
	app := newTestApp(t)

	token := register(t, app, "Meera", "meera@example.com")

	status, body := doJSON(t, app, http.MethodPost, "/api/register", "", map[string]string{
		"name": "Again", "email": "MEERA@example.com", "password": "x",
	})
	if status != http.StatusBadRequest || body["error"] != "email exists" {
		t.Errorf("expected 400 email exists, got %d %v", status, body)
	}

	status, body = doJSON(t, app, http.MethodPost, "/api/register", "", map[string]string{"email": "a@b.c"})
	if status != http.StatusBadRequest || body["error"] != "missing fields" {
		t.Errorf("expected 400 missing fields, got %d %v", status, body)
	}

	status, body = doJSON(t, app, http.MethodPost, "/api/login", "", map[string]string{
		"email": "meera@example.com", "password": "wrong",
	})
	if status != http.StatusUnauthorized || body["error"] != "invalid" {
		t.Errorf("expected 401 invalid, got %d %v", status, body)
	}

	status, body = doJSON(t, app, http.MethodPost, "/api/login", "", map[string]string{
		"email": "meera@example.com", "password": "secret",
	})
	if status != http.StatusOK || body["token"] == nil {
		t.Fatalf("expected login to succeed, got %d %v", status, body)
	}
	user, _ := body["user"].(map[string]interface{})
	if _, leaked := user["password_hash"]; leaked {
		t.Error("expected password hash to be excluded from login response")
	}

	status, body = doJSON(t, app, http.MethodPut, "/api/profile", token, map[string]string{"language": "gu"})
	if status != http.StatusOK || body["ok"] != true {
		t.Fatalf("expected profile update ok, got %d %v", status, body)
	}
	status, body = doJSON(t, app, http.MethodGet, "/api/profile", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", status, body)
	}
	user, _ = body["user"].(map[string]interface{})
	if user["language"] != "gu" || user["name"] != "Meera" {
		t.Errorf("unexpected profile %v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Error("expected password hash to be excluded from profile")
	}
}

func TestMedicinesFlow(t *testing.T) {
	app := newTestApp(t)
	alice := register(t, app, "Alice", "alice@example.com")
	bob := register(t, app, "Bob", "bob@example.com")

	status, body := doJSON(t, app, http.MethodPost, "/api/medicines", alice, map[string]interface{}{"dosage": "1 tab"})
	if status != http.StatusBadRequest || body["error"] != "missing name" {
		t.Errorf("expected 400 missing name, got %d %v", status, body)
	}

	status, body = doJSON(t, app, http.MethodPost, "/api/medicines", alice, map[string]interface{}{
		"name":      "Metformin",
		"schedules": []map[string]interface{}{{"time": "7:5"}},
	})
	if status != http.StatusBadRequest || body["error"] != "invalid schedule time" {
		t.Errorf("expected 400 invalid schedule time, got %d %v", status, body)
	}

	status, body = doJSON(t, app, http.MethodPost, "/api/medicines", alice, map[string]interface{}{
		"name":   "Metformin",
		"dosage": "500mg",
		"schedules": []map[string]interface{}{
			{"time": "08:00", "days": []string{"mon", "wed", "mon"}},
		},
	})
	if status != http.StatusOK || body["ok"] != true {
		t.Fatalf("expected create ok, got %d %v", status, body)
	}
	id := int64(body["id"].(float64))

	status, body = doJSON(t, app, http.MethodGet, "/api/medicines", alice, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	list := body["medicines"].([]interface{})
	if len(list) != 1 {
		t.Fatalf("expected 1 medicine, got %d", len(list))
	}
	schedules := list[0].(map[string]interface{})["schedules"].([]interface{})
	first := schedules[0].(map[string]interface{})
	if first["time"] != "08:00:00" {
		t.Errorf("expected time 08:00:00, got %v", first["time"])
	}
	if days := first["days"].([]interface{}); len(days) != 2 {
		t.Errorf("expected deduplicated days, got %v", days)
	}

	path := fmt.Sprintf("/api/medicines/%d", id)
	status, _ = doJSON(t, app, http.MethodPut, path, alice, map[string]interface{}{"dosage": "850mg"})
	if status != http.StatusOK {
		t.Errorf("expected 200 on partial update, got %d", status)
	}
	_, body = doJSON(t, app, http.MethodGet, "/api/medicines", alice, nil)
	m := body["medicines"].([]interface{})[0].(map[string]interface{})
	if m["name"] != "Metformin" || m["dosage"] != "850mg" || len(m["schedules"].([]interface{})) != 1 {
		t.Errorf("unexpected medicine after partial update: %v", m)
	}

	// Bob can neither see nor touch Alice's medicine.
	_, body = doJSON(t, app, http.MethodGet, "/api/medicines", bob, nil)
	if len(body["medicines"].([]interface{})) != 0 {
		t.Errorf("expected bob to see no medicines, got %v", body["medicines"])
	}
	status, body = doJSON(t, app, http.MethodPut, path, bob, map[string]interface{}{"name": "x"})
	if status != http.StatusNotFound || body["error"] != "not found" {
		t.Errorf("expected 404 for foreign update, got %d %v", status, body)
	}
	status, _ = doJSON(t, app, http.MethodDelete, path, bob, nil)
	if status != http.StatusNotFound {
		t.Errorf("expected 404 for foreign delete, got %d", status)
	}

	status, _ = doJSON(t, app, http.MethodDelete, "/api/medicines/abc", alice, nil)
	if status != http.StatusNotFound {
		t.Errorf("expected 404 for non-numeric id, got %d", status)
	}

	status, _ = doJSON(t, app, http.MethodDelete, path, alice, nil)
	if status != http.StatusOK {
		t.Errorf("expected 200 on delete, got %d", status)
	}
	status, _ = doJSON(t, app, http.MethodDelete, path, alice, nil)
	if status != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", status)
	}
}

func TestDoctorsFlow(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "Dev", "dev@example.com")

	status, body := doJSON(t, app, http.MethodPost, "/api/doctors", token, map[string]string{
		"name": "Dr. Rao", "specialty": "ENT",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", status, body)
	}
	path := fmt.Sprintf("/api/doctors/%d", int64(body["id"].(float64)))

	status, _ = doJSON(t, app, http.MethodPut, path, token, map[string]string{"phone": "555"})
	if status != http.StatusOK {
		t.Errorf("expected 200 on update, got %d", status)
	}
	_, body = doJSON(t, app, http.MethodGet, "/api/doctors", token, nil)
	d := body["doctors"].([]interface{})[0].(map[string]interface{})
	if d["phone"] != "555" || d["specialty"] != "ENT" {
		t.Errorf("unexpected doctor %v", d)
	}

	status, _ = doJSON(t, app, http.MethodDelete, path, token, nil)
	if status != http.StatusOK {
		t.Errorf("expected 200 on delete, got %d", status)
	}
	status, _ = doJSON(t, app, http.MethodPut, path, token, map[string]string{"phone": "1"})
	if status != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", status)
	}
}

func TestPrescriptionUploadDownloadDelete(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "Ira", "ira@example.com")

	status, body := do(t, app, uploadRequest(t, token, "Dr. Shah", "", ""))
	if status != http.StatusBadRequest || body["error"] != "No file uploaded" {
		t.Errorf("expected 400 No file uploaded, got %d %v", status, body)
	}

	status, body = do(t, app, uploadRequest(t, token, "Dr. Shah", "scan.pdf", "first"))
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", status, body)
	}
	first := body["prescription"].(map[string]interface{})

	_, body = do(t, app, uploadRequest(t, token, "Dr. Shah", "scan.pdf", "second"))
	second := body["prescription"].(map[string]interface{})
	if first["filename"] == second["filename"] {
		t.Fatalf("expected distinct stored names, got %v twice", first["filename"])
	}

	_, body = doJSON(t, app, http.MethodGet, "/api/prescriptions", token, nil)
	list := body["prescriptions"].([]interface{})
	if len(list) != 2 {
		t.Fatalf("expected 2 prescriptions, got %d", len(list))
	}
	url := list[1].(map[string]interface{})["url"].(string)
	if url != "/uploads/"+second["filename"].(string) {
		t.Errorf("unexpected url %q", url)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, url, nil), -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(content) != "second" {
		t.Errorf("expected file content second, got %d %q", resp.StatusCode, content)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/uploads/..%2Fdata%2Fstore.json", nil))
	if status != http.StatusNotFound {
		t.Errorf("expected 404 for traversal, got %d", status)
	}

	path := fmt.Sprintf("/api/prescriptions/%d", int64(first["id"].(float64)))
	status, _ = doJSON(t, app, http.MethodDelete, path, token, nil)
	if status != http.StatusOK {
		t.Errorf("expected 200 on delete, got %d", status)
	}
	status, _ = doJSON(t, app, http.MethodDelete, path, token, nil)
	if status != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", status)
	}
	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/uploads/"+first["filename"].(string), nil))
	if status != http.StatusNotFound {
		t.Errorf("expected deleted file to be gone, got %d", status)
	}
}

func TestUnknownAPIRoute(t *testing.T) {
	app := newTestApp(t)
	status, body := doJSON(t, app, http.MethodGet, "/api/nope", "", nil)
	if status != http.StatusNotFound || body["error"] != "not found" {
		t.Errorf("expected 404 not found, got %d %v", status, body)
	}
}
