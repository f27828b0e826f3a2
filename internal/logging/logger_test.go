package logging

import "testing"

func TestNew(t *testing.T) {
	for _, development := range []bool{true, false} {
		logger, err := New(development)
		if err != nil {
			t.Fatalf("development=%v: unexpected error: %v", development, err)
		}
		if logger == nil {
			t.Fatalf("development=%v: expected logger", development)
		}
	}
}

func TestInitLoggerReplacesGlobal(t *testing.T) {
	before := L
	InitLogger(true)
	if L == before {
		t.Fatal("expected InitLogger to replace the global logger")
	}
	L.Debug("logger smoke test")
}
