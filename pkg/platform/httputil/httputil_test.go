package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "gfde/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "store failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("join source missing includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeJoinSourceMissing, "primary result has no entity"))

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "join_source_missing" {
			t.Fatalf("expected error code join_source_missing, got %q", body["error"])
		}
		if body["error_description"] != "primary result has no entity" {
			t.Fatalf("expected error_description to be returned")
		}
	})
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"query":"{ a }"}`))
		got, err := DecodeJSON[map[string]string](req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got["query"] != "{ a }" {
			t.Fatalf("unexpected body %v", got)
		}
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		_, err := DecodeJSON[map[string]string](req)
		if !dErrors.HasCode(err, dErrors.CodeBadRequest) {
			t.Fatalf("expected bad_request, got %v", err)
		}
	})
}

func TestReadErrorResponse(t *testing.T) {
	resp, ok := ReadErrorResponse([]byte(`{"error":"timeout","error_description":"slow"}`))
	if !ok || resp.Error != "timeout" || resp.ErrorDescription != "slow" {
		t.Fatalf("unexpected envelope %+v ok=%v", resp, ok)
	}
	if _, ok := ReadErrorResponse([]byte(`<html>`)); ok {
		t.Fatalf("expected non-envelope body to be rejected")
	}
}
