package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"usmtf_importer/internal/convert"
)

var aco = filepath.Join("..", "..", "internal", "convert", "testdata", "aco.txt")

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := "log:\n  level: error\narchive:\n  backends: [sqlite]\n  sqlite:\n    path: " +
		filepath.Join(dir, "archive.db") + "\noutput:\n  dir: " + filepath.Join(dir, "out") + "\n"
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return path, dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &out
	cmd.ErrWriter = &errOut
	err := cmd.Run(context.Background(), append([]string{"usmtf_importer"}, args...))
	return out.String(), err
}

func TestInspectCommand(t *testing.T) {
	cfg, _ := writeConfig(t)
	out, err := run(t, "-c", cfg, "inspect", "--pretty", aco)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	var rep convert.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("output is not a report: %v\n%s", err, out)
	}
	if rep.MessageType != "ACO" || !rep.Valid || rep.Coverage.Records != 5 {
		t.Errorf("report = %+v", rep)
	}
}

func TestConvertAndHistory(t *testing.T) {
	cfg, dir := writeConfig(t)

	out, err := run(t, "-c", cfg, "convert", aco)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := filepath.Join(dir, "out", "aco.txt")
	if strings.TrimSpace(out) != want {
		t.Errorf("convert printed %q, want %q", out, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("output missing: %v", err)
	}

	out, err = run(t, "-c", cfg, "history", "--limit", "5")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "ACO: 1 imports") || !strings.Contains(out, aco) {
		t.Errorf("history output:\n%s", out)
	}
}

func TestCommandErrors(t *testing.T) {
	cfg, dir := writeConfig(t)
	drop := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{"convert without files", []string{"-c", cfg, "convert"}},
		{"inspect without file", []string{"-c", cfg, "inspect"}},
		{"bad log level", []string{"-c", cfg, "--log-level", "loud", "inspect", aco}},
		{"missing config", []string{"-c", filepath.Join(t.TempDir(), "none.yaml"), "inspect", aco}},
		{"watch the output dir", []string{"-c", cfg, "watch", "--dir", drop, "--out", drop}},
		{"watch the configured output", []string{"-c", cfg, "watch", "--dir", filepath.Join(dir, "out")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
