// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"shorter than max", "hello", 10, "hello"},
		{"exactly max", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 8, "hello..."},
		{"multibyte safe", "héllo wörld", 8, "héllo..."},
		{"tiny max", "hello", 2, "he"},
		{"zero max", "hello", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.input, tt.max); got != tt.expected {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.expected)
			}
		})
	}
}

func TestTruncateRunesNoEllipsis(t *testing.T) {
	if got := TruncateRunesNoEllipsis("hello", 3); got != "hel" {
		t.Errorf("got %q, want %q", got, "hel")
	}
	if got := TruncateRunesNoEllipsis("日本語テスト", 2); got != "日本" {
		t.Errorf("got %q, want %q", got, "日本")
	}
}

func TestTruncateWidthCountsColumns(t *testing.T) {
	// CJK characters occupy two columns each.
	if got := StringWidth("日本語"); got != 6 {
		t.Fatalf("StringWidth = %d, want 6", got)
	}

	got := TruncateWidth("日本語テスト", 7)
	if StringWidth(got) > 7 {
		t.Errorf("TruncateWidth produced width %d > 7: %q", StringWidth(got), got)
	}

	if got := TruncateWidth("short", 20); got != "short" {
		t.Errorf("short string should pass through, got %q", got)
	}
}

func TestSafeSubstring(t *testing.T) {
	s := "héllo"
	if got := SafeSubstring(s, 1, 3); got != "él" {
		t.Errorf("got %q, want %q", got, "él")
	}
	if got := SafeSubstring(s, -1, 99); got != s {
		t.Errorf("out-of-range indices should clamp, got %q", got)
	}
	if got := SafeSubstring(s, 3, 1); got != "" {
		t.Errorf("inverted range should be empty, got %q", got)
	}
}

func TestAtomicWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.txt")

	if err := AtomicWriteFile(path, []byte("first"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("second"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile overwrite: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}

	// No temp droppings left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}
