package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/usermanagement/pkg/errors"
	"github.com/angelmondragon/usermanagement/pkg/logger"
	"github.com/angelmondragon/usermanagement/pkg/types"
	"github.com/rs/zerolog"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"hello": "world"})

	if got := w.Code; got != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", got)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode success envelope: %v", err)
	}
	if body.Data.(map[string]any)["hello"] != "world" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestWriteCreated(t *testing.T) {
	w := httptest.NewRecorder()
	WriteCreated(w, map[string]string{"id": "1"})
	if got := w.Code; got != http.StatusCreated {
		t.Fatalf("expected status 201 but got %d", got)
	}
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{"age": "Age must be at least 18"})
	WriteError(context.Background(), nil, w, err)

	if got := w.Code; got != http.StatusBadRequest {
		t.Fatalf("expected status 400 but got %d", got)
	}

	var body struct {
		Error struct {
			Code    string            `json:"code"`
			Message string            `json:"message"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
	if body.Error.Details["age"] != "Age must be at least 18" {
		t.Fatalf("expected age details in public payload, got %v", body.Error.Details)
	}
}

func TestWriteErrorStatusPerCode(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{pkgerrors.New(pkgerrors.CodeNotFound, "User not found with ID: 99"), http.StatusNotFound, "User not found with ID: 99"},
		{pkgerrors.New(pkgerrors.CodeConflict, "Email already exists: a@b.co"), http.StatusConflict, "Email already exists: a@b.co"},
		{pkgerrors.New(pkgerrors.CodeRateLimit, "slow down"), http.StatusTooManyRequests, "slow down"},
		{pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("dial tcp: refused"), "user store unavailable"), http.StatusInternalServerError, "internal server error"},
		{pkgerrors.New(pkgerrors.CodeDependency, "redis down"), http.StatusServiceUnavailable, "dependency unavailable"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		WriteError(context.Background(), nil, w, tc.err)
		if w.Code != tc.status {
			t.Fatalf("%v: expected status %d got %d", tc.err, tc.status, w.Code)
		}
		var body types.ErrorEnvelope
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Error.Message != tc.message {
			t.Fatalf("%v: expected message %q got %q", tc.err, tc.message, body.Error.Message)
		}
	}
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}
	if strings.Contains(w.Body.String(), "boom") {
		t.Fatalf("internal error detail leaked: %s", w.Body.String())
	}
}

func TestWriteErrorLogsByClass(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: &buf})

	WriteError(context.Background(), logg, httptest.NewRecorder(), pkgerrors.New(pkgerrors.CodeNotFound, "missing"))
	WriteError(context.Background(), logg, httptest.NewRecorder(), errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two log lines, got %d: %s", len(lines), buf.String())
	}

	var first, second map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode first log: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("decode second log: %v", err)
	}
	if first["level"] != "warn" || first["message"] != "request.rejected" {
		t.Fatalf("expected warn request.rejected, got %v", first)
	}
	if second["level"] != "error" || second["message"] != "request.error" || second["error_code"] != string(pkgerrors.CodeInternal) {
		t.Fatalf("expected error request.error, got %v", second)
	}
}
