package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/usermanagement/pkg/errors"
)

type payload struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Email string `json:"email" validate:"omitempty,email"`
}

func decode(t *testing.T, body string) (payload, error) {
	t.Helper()
	var p payload
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return p, DecodeJSONBody(req, &p)
}

func detailsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected map details, got %T", typed.Details())
	}
	return details
}

func TestDecodeJSONBody(t *testing.T) {
	var p payload
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Jo","age":30}`))
	if err := DecodeJSONBody(req, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Jo" || p.Age != 30 {
		t.Fatalf("unexpected decoded payload %+v", p)
	}
}

func TestDecodeJSONBodyRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"malformed":     `{"name":`,
		"unknown field": `{"name":"Jo","role":"admin"}`,
		"wrong type":    `{"age":"old"}`,
		"two objects":   `{"name":"a"}{"name":"b"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decode(t, body)
			details := detailsOf(t, err)
			if details["body"] == "" {
				t.Fatalf("expected body detail, got %v", details)
			}
		})
	}

	_, err := decode(t, "")
	if got := detailsOf(t, err)["body"]; got != "request body is empty" {
		t.Fatalf("unexpected empty body message %q", got)
	}
	_, err = decode(t, `{"age":"old"}`)
	if got := detailsOf(t, err)["body"]; got != "age has the wrong type (want int)" {
		t.Fatalf("unexpected type message %q", got)
	}
}

func TestDecodeJSONBodyAppliesStructTags(t *testing.T) {
	_, err := decode(t, `{"email":"nope"}`)
	if got := detailsOf(t, err)["email"]; got != "must be a valid email" {
		t.Fatalf("unexpected email message %q", got)
	}
}

func TestParseQueryString(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/users?notification=%20sms%20", nil)
	got, err := ParseQueryString(req, "notification", "email", 32)
	if err != nil || got != "sms" {
		t.Fatalf("expected sms, got %q err=%v", got, err)
	}

	req = httptest.NewRequest(http.MethodPost, "/users", nil)
	got, err = ParseQueryString(req, "notification", "email", 32)
	if err != nil || got != "email" {
		t.Fatalf("expected default email, got %q err=%v", got, err)
	}

	req = httptest.NewRequest(http.MethodPost, "/users?notification=%20%20", nil)
	if got, _ := ParseQueryString(req, "notification", "email", 32); got != "email" {
		t.Fatalf("blank value should fall back to default, got %q", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/users?notification="+strings.Repeat("x", 33), nil)
	_, err = ParseQueryString(req, "notification", "email", 32)
	if detailsOf(t, err)["notification"] == "" {
		t.Fatalf("expected notification detail, got %v", err)
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello  ", 3); got != "hel" {
		t.Fatalf("unexpected sanitized value %q", got)
	}
	if got := SanitizeString(" ok ", 0); got != "ok" {
		t.Fatalf("unexpected sanitized value %q", got)
	}
}
