package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The dashboard must stay readable on light and dark terminal backgrounds, so colors are
// adaptive and "faint" is only applied on dark backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorSurfaceFg  lipgloss.TerminalColor = ac("235", "252")
	colorControlBg  lipgloss.TerminalColor = ac("252", "235")
	colorInputBg    lipgloss.TerminalColor = ac("254", "234")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorAccent     lipgloss.TerminalColor = ac("27", "62")
	colorBorder     lipgloss.TerminalColor = ac("250", "243")

	colorSuccess lipgloss.TerminalColor = ac("28", "42")
	colorWarning lipgloss.TerminalColor = ac("130", "214")
	colorDanger  lipgloss.TerminalColor = ac("160", "203")
)

// applyProfile switches the palette. "mono" drops all hues for terminals or users that
// prefer plain output.
func applyProfile(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mono":
		colorAccent = ac("235", "252")
		colorSuccess = ac("235", "252")
		colorWarning = ac("240", "245")
		colorDanger = ac("235", "252")
		colorSelectedBg = ac("250", "240")
	default:
		colorAccent = ac("27", "62")
		colorSuccess = ac("28", "42")
		colorWarning = ac("130", "214")
		colorDanger = ac("160", "203")
		colorSelectedBg = ac("#e9e9e9", "#262626")
	}
}

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
}

func styleStatus(status string) lipgloss.Style {
	st := lipgloss.NewStyle().Bold(true)
	switch status {
	case "approved", "active":
		return st.Foreground(colorSuccess)
	case "pending":
		return st.Foreground(colorWarning)
	case "rejected", "inactive":
		return st.Foreground(colorDanger)
	default:
		return st.Foreground(colorMuted)
	}
}

// applyColorProfilePreference sets Lip Gloss's color profile for the dashboard. Only NO_COLOR
// disables colors; CLICOLOR is meant for non-interactive output.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	switch {
	case strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit"):
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	case strings.Contains(term, "256color"):
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures background detection.
//
// Priority:
// 1) ROADMAP_ADMIN_TUI_THEME=light|dark|auto
// 2) COLORFGBG heuristic ("fg;bg")
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ROADMAP_ADMIN_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
