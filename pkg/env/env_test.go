package env

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("USERS_TEST_VALUE", " console ")
	if got := Get("USERS_TEST_VALUE", "json"); got != "console" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	t.Setenv("USERS_TEST_VALUE", "")
	if got := Get("USERS_TEST_VALUE", "json"); got != "json" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("USERS_TEST_FLAG", "true")
	if !Bool("USERS_TEST_FLAG", false) {
		t.Fatal("expected true")
	}
	t.Setenv("USERS_TEST_FLAG", "nope")
	if !Bool("USERS_TEST_FLAG", true) {
		t.Fatal("malformed values should fall back")
	}
	t.Setenv("USERS_TEST_FLAG", "")
	if Bool("USERS_TEST_FLAG", false) {
		t.Fatal("unset values should fall back")
	}
}
