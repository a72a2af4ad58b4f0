// ABOUTME: Tests for the install-skill command.
// ABOUTME: Validates skill installation, directory creation, and file content.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSkillInstallCreatesDirectory(t *testing.T) {
	tmpHome := t.TempDir()
	skillSkipConfirm = true
	defer func() { skillSkipConfirm = false }()

	var out bytes.Buffer
	if err := installSkill(tmpHome, strings.NewReader(""), &out); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(tmpHome, ".claude", "skills", "nutrition"))
	if err != nil {
		t.Fatalf("Skill directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("Expected skill path to be a directory")
	}
	if !strings.Contains(out.String(), "Installed nutrition skill") {
		t.Errorf("Expected success message, got %q", out.String())
	}
}

func TestSkillInstallWritesEmbeddedContent(t *testing.T) {
	tmpHome := t.TempDir()
	skillSkipConfirm = true
	defer func() { skillSkipConfirm = false }()

	if err := installSkill(tmpHome, strings.NewReader(""), &bytes.Buffer{}); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}

	written, err := os.ReadFile(skillPath(tmpHome))
	if err != nil {
		t.Fatalf("Failed to read written skill file: %v", err)
	}

	embedded, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		t.Fatalf("Failed to read embedded skill: %v", err)
	}
	if !bytes.Equal(written, embedded) {
		t.Error("Installed skill does not match embedded content")
	}

	expectedMarkers := []string{
		"name: nutrition",
		"description:",
		"mcp__nutrition__create_meal",
		"mcp__nutrition__lookup_food",
		"mcp__nutrition__dashboard",
		"mcp__nutrition__schedule_meal",
		"## When to use nutrition",
		"## Recurrence rules",
	}
	for _, marker := range expectedMarkers {
		if !strings.Contains(string(written), marker) {
			t.Errorf("Expected SKILL.md to contain %q", marker)
		}
	}
}

func TestSkillInstallOverwritesExistingFile(t *testing.T) {
	tmpHome := t.TempDir()
	skillSkipConfirm = true
	defer func() { skillSkipConfirm = false }()

	path := skillPath(tmpHome)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("old content"), 0600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := installSkill(tmpHome, strings.NewReader(""), &out); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}

	written, _ := os.ReadFile(path)
	if string(written) == "old content" {
		t.Error("Expected existing skill file to be overwritten")
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Error("Expected overwrite notice")
	}
}

func TestSkillInstallPromptAnswers(t *testing.T) {
	tests := []struct {
		answer    string
		installed bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.answer), func(t *testing.T) {
			tmpHome := t.TempDir()
			skillSkipConfirm = false

			var out bytes.Buffer
			if err := installSkill(tmpHome, strings.NewReader(tt.answer), &out); err != nil {
				t.Fatalf("installSkill failed: %v", err)
			}

			_, err := os.Stat(skillPath(tmpHome))
			if installed := err == nil; installed != tt.installed {
				t.Errorf("answer %q: installed = %v, want %v", tt.answer, installed, tt.installed)
			}
			if !tt.installed && !strings.Contains(out.String(), "canceled") {
				t.Error("Expected cancel message")
			}
		})
	}
}

func TestSkillInstallFilePermissions(t *testing.T) {
	tmpHome := t.TempDir()
	skillSkipConfirm = true
	defer func() { skillSkipConfirm = false }()

	if err := installSkill(tmpHome, strings.NewReader(""), &bytes.Buffer{}); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}

	info, err := os.Stat(skillPath(tmpHome))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected file mode 0600, got %o", perm)
	}
}

func TestSkillSkipConfirmFlag(t *testing.T) {
	flag := installSkillCmd.Flags().Lookup("yes")
	if flag == nil {
		t.Fatal("Expected --yes flag")
	}
	if flag.Shorthand != "y" {
		t.Errorf("Expected shorthand -y, got %q", flag.Shorthand)
	}
}
