// Package main provides tests for the LeapGrid CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapgrid/internal/cli"
	"github.com/leapstack-labs/leapgrid/internal/cli/config"
)

// newTestRoot builds a root command pointed at a throwaway workspace so
// tests never touch the user's real version directory or settings.
func newTestRoot(t *testing.T, args ...string) (*bytes.Buffer, func() error) {
	t.Helper()
	config.ResetConfig()

	tmpDir := t.TempDir()
	base := []string{
		"--version-dir", filepath.Join(tmpDir, "versions"),
		"--state", filepath.Join(tmpDir, "state.db"),
	}

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append(args, base...))
	return buf, cmd.Execute
}

func TestVersionCommand(t *testing.T) {
	buf, execute := newTestRoot(t, "version")

	if err := execute(); err != nil {
		t.Errorf("version command error = %v", err)
	}

	if !strings.Contains(buf.String(), "LeapGrid") {
		t.Errorf("version output should contain 'LeapGrid', got: %s", buf.String())
	}
}

func TestHelpCommand(t *testing.T) {
	config.ResetConfig()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Errorf("help command error = %v", err)
	}

	output := buf.String()
	for _, expected := range []string{"show", "versions", "transform", "autosave", "serve", "browse"} {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestShowCommand(t *testing.T) {
	docPath := filepath.Join(t.TempDir(), "budget.csv")
	if err := os.WriteFile(docPath, []byte("item,amount\nrent,1200\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	buf, execute := newTestRoot(t, "show", docPath, "--format", "markdown")

	if err := execute(); err != nil {
		t.Errorf("show command error = %v", err)
	}

	if !strings.Contains(buf.String(), "rent") {
		t.Errorf("show output should contain row data, got: %s", buf.String())
	}
}

func TestVersionsSaveAndList(t *testing.T) {
	docPath := filepath.Join(t.TempDir(), "budget.csv")
	if err := os.WriteFile(docPath, []byte("item,amount\nrent,1200\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, execute := newTestRoot(t, "versions", "save", docPath); execute() != nil {
		t.Fatal("versions save failed")
	}
}

func TestTransformCommand(t *testing.T) {
	docPath := filepath.Join(t.TempDir(), "budget.csv")
	if err := os.WriteFile(docPath, []byte("item,amount\nrent,1200\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(t.TempDir(), "out.csv")

	_, execute := newTestRoot(t, "transform", docPath, "--map", "item=value.upper()", "--out", outPath)
	if err := execute(); err != nil {
		t.Fatalf("transform command error = %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "RENT") {
		t.Errorf("transform should uppercase the item column, got: %s", data)
	}
}

func TestAutoSaveStatusCommand(t *testing.T) {
	buf, execute := newTestRoot(t, "autosave", "status")

	if err := execute(); err != nil {
		t.Errorf("autosave status command error = %v", err)
	}

	if !strings.Contains(buf.String(), "Auto-save") {
		t.Errorf("status output should mention auto-save, got: %s", buf.String())
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			config.ResetConfig()
			cmd := cli.NewRootCmd()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs([]string{"completion", shell})

			if err := cmd.Execute(); err != nil {
				t.Errorf("completion %s command error = %v", shell, err)
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	config.ResetConfig()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"unknown-command"})

	if err := cmd.Execute(); err == nil {
		t.Error("unknown command should return an error")
	}
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
