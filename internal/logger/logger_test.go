package logger

import (
	"bytes"
	"os"
	"testing"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose off")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose on")
	}
}

func TestOutput_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("indexing %s", "doc-1")
	Info("upserted %d vectors", 3)
	Warn("provider slow")
	Section("Retrieval")

	got := buf.String()
	want := "[DEBUG] indexing doc-1\n[INFO] upserted 3 vectors\n[WARN] provider slow\n\n=== Retrieval ===\n"
	if got != want {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestSilent_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("hidden")
	Info("hidden")
	Warn("hidden")
	Section("hidden")

	if buf.Len() > 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestConcurrentAccess(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(n int) {
			SetVerbose(true)
			Debug("concurrent %d", n)
			IsVerbose()
			SetVerbose(false)
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
