package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]int{"count": 3}, "req-1")

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if !env.Success || env.RequestID != "req-1" || env.Error != nil {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestFailDetailsCarriesStructuredError(t *testing.T) {
	rec := httptest.NewRecorder()
	FailDetails(rec, 422, "validation_failed", "boom", map[string]string{"rule": "max_hours"}, "req-2")

	if rec.Code != 422 {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Success || env.Error == nil {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Error.Code != "validation_failed" {
		t.Fatalf("unexpected code %q", env.Error.Code)
	}
	details, ok := env.Error.Details.(map[string]any)
	if !ok || details["rule"] != "max_hours" {
		t.Fatalf("expected structured details, got %#v", env.Error.Details)
	}
}

func TestFailOmitsEmptyDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, 404, "not_found", "missing", "req-3")

	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	errObj, ok := raw["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object, got %#v", raw["error"])
	}
	if _, present := errObj["details"]; present {
		t.Fatal("empty details must be omitted from the wire form")
	}
}
