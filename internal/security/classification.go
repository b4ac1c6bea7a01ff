// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// DoD classification markings per DoDI 5200.48 and 32 CFR Part 2002.

// Package security provides classification marking parsing and normalization
// for the screen banners.
package security

import (
	"fmt"
	"strings"
)

// Level represents DoD information classification levels.
type Level int

const (
	LevelUnclassified Level = iota
	LevelCUI               // Controlled Unclassified Information
	LevelConfidential
	LevelSecret
	LevelTopSecret
)

// Banner text constants per DoD marking standards.
const (
	BannerUnclassified = "UNCLASSIFIED"
	BannerCUI          = "CUI"
	BannerConfidential = "CONFIDENTIAL"
	BannerSecret       = "SECRET"
	BannerTopSecret    = "TOP SECRET"
)

// String returns the banner text for a level.
func (l Level) String() string {
	switch l {
	case LevelCUI:
		return BannerCUI
	case LevelConfidential:
		return BannerConfidential
	case LevelSecret:
		return BannerSecret
	case LevelTopSecret:
		return BannerTopSecret
	default:
		return BannerUnclassified
	}
}

// Marking is a complete classification marking: a level plus dissemination
// caveats (NOFORN, ORCON, ...).
type Marking struct {
	Level   Level
	Caveats []string
}

// String returns the full banner string, caveats joined with "//".
func (m Marking) String() string {
	parts := append([]string{m.Level.String()}, m.Caveats...)
	return strings.Join(parts, "//")
}

// IsClassified reports whether the level is Confidential or above.
func (m Marking) IsClassified() bool {
	return m.Level >= LevelConfidential
}

// Parse parses a marking string like "SECRET//NOFORN". An empty string is
// UNCLASSIFIED. Unknown levels are an error; unknown trailing segments are
// kept as caveats.
func Parse(s string) (Marking, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Marking{Level: LevelUnclassified}, nil
	}

	parts := strings.Split(strings.ToUpper(s), "//")
	m := Marking{}

	switch strings.TrimSpace(parts[0]) {
	case "UNCLASSIFIED", "U":
		m.Level = LevelUnclassified
	case "CUI", "CONTROLLED UNCLASSIFIED INFORMATION":
		m.Level = LevelCUI
	case "CONFIDENTIAL", "C":
		m.Level = LevelConfidential
	case "SECRET", "S":
		m.Level = LevelSecret
	case "TOP SECRET", "TOPSECRET", "TS":
		m.Level = LevelTopSecret
	default:
		return Marking{}, fmt.Errorf("unknown classification level: %s", parts[0])
	}

	for _, part := range parts[1:] {
		if part = strings.TrimSpace(part); part != "" {
			m.Caveats = append(m.Caveats, part)
		}
	}
	return m, nil
}

// Normalize returns the canonical banner string for a configured marking,
// falling back to UNCLASSIFIED when the marking does not parse. The banners
// must always render something sensible.
func Normalize(s string) string {
	m, err := Parse(s)
	if err != nil {
		return BannerUnclassified
	}
	return m.String()
}

// ParseLevel returns just the level of a marking string, UNCLASSIFIED on any
// parse failure.
func ParseLevel(s string) Level {
	m, err := Parse(s)
	if err != nil {
		return LevelUnclassified
	}
	return m.Level
}
