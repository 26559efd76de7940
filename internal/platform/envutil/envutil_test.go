package envutil

import (
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("WTG_TEST_INT", "abc")
	if got := Int("WTG_TEST_INT", 7, nil); got != 7 {
		t.Fatalf("Int: want=7 got=%d", got)
	}
	t.Setenv("WTG_TEST_INT", " 42 ")
	if got := Int("WTG_TEST_INT", 7, nil); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
}

func TestBoolVariants(t *testing.T) {
	for raw, want := range map[string]bool{"on": true, "YES": true, "0": false, "off": false} {
		t.Setenv("WTG_TEST_BOOL", raw)
		if got := Bool("WTG_TEST_BOOL", !want, nil); got != want {
			t.Fatalf("Bool(%q): want=%v got=%v", raw, want, got)
		}
	}
	t.Setenv("WTG_TEST_BOOL", "maybe")
	if got := Bool("WTG_TEST_BOOL", true, nil); !got {
		t.Fatalf("Bool: expected default on unparsable value")
	}
}

func TestSeconds(t *testing.T) {
	t.Setenv("WTG_TEST_SECS", "")
	if got := Seconds("WTG_TEST_SECS", 3*time.Second, nil); got != 3*time.Second {
		t.Fatalf("Seconds default: got=%s", got)
	}
	t.Setenv("WTG_TEST_SECS", "15")
	if got := Seconds("WTG_TEST_SECS", 3*time.Second, nil); got != 15*time.Second {
		t.Fatalf("Seconds: got=%s", got)
	}
	t.Setenv("WTG_TEST_SECS", "-1")
	if got := Seconds("WTG_TEST_SECS", 3*time.Second, nil); got != 3*time.Second {
		t.Fatalf("Seconds negative: got=%s", got)
	}
}

func TestFloatAndString(t *testing.T) {
	t.Setenv("WTG_TEST_FLOAT", "0.25")
	if got := Float("WTG_TEST_FLOAT", 1, nil); got != 0.25 {
		t.Fatalf("Float: got=%v", got)
	}
	t.Setenv("WTG_TEST_STR", "  ")
	if got := String("WTG_TEST_STR", "def", nil); got != "def" {
		t.Fatalf("String: got=%q", got)
	}
}
