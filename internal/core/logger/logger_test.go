package logger

import (
	"fmt"
	"log"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestToWriterTrimsNewlines(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := ToWriter(zap.New(core), zapcore.WarnLevel)

	fmt.Fprintln(w, "[GIN-debug] route registered")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Message != "[GIN-debug] route registered" {
		t.Errorf("unexpected message %q", entries[0].Message)
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("expected warn level, got %s", entries[0].Level)
	}
}

func TestRedirectStdLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	undo := RedirectStdLog(zap.New(core), zapcore.InfoLevel)
	log.Print("from std log")
	undo()

	if logs.FilterMessage("from std log").Len() != 1 {
		t.Errorf("expected std log line to reach zap, got %v", logs.All())
	}
}

func TestNewWithRotateWritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "culfs.log")
	l, cleanup := NewWithRotate("bogus", true, FileRotate{Filename: file, MaxSizeMB: 1})
	l.Info("hello")
	cleanup()

	if !l.Core().Enabled(zapcore.InfoLevel) || l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("unknown level should fall back to info")
	}
	matches, _ := filepath.Glob(file + "*")
	if len(matches) == 0 {
		t.Errorf("expected log file at %s", file)
	}
}
