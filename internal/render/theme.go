// Package render turns mrdoc records into terminal text: themed chat lines,
// markdown replies, doctor and appointment tables, and status banners.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"mrdoc/internal/data/embedded"
	"mrdoc/internal/logger"
)

// StyleConfig is one style entry of a theme file.
type StyleConfig struct {
	Foreground interface{} `yaml:"foreground"`
	Background interface{} `yaml:"background"`
	Bold       *bool       `yaml:"bold"`
	Italic     *bool       `yaml:"italic"`
	Underline  *bool       `yaml:"underline"`
}

// ThemeFile is the YAML layout of an embedded theme.
type ThemeFile struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Styles      map[string]StyleConfig `yaml:"styles"`
}

// Theme holds the lipgloss styles used across the presentation layer.
type Theme struct {
	Name      string
	User      lipgloss.Style
	Assistant lipgloss.Style
	Welcome   lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Info      lipgloss.Style
	Timestamp lipgloss.Style
	Header    lipgloss.Style
	Muted     lipgloss.Style
	Highlight lipgloss.Style
}

var themeData = map[string][]byte{
	"default": embedded.DefaultThemeData,
	"dark":    embedded.DarkThemeData,
	"plain":   embedded.PlainThemeData,
}

// ThemeNames lists the embedded themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themeData))
	for name := range themeData {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadTheme returns the named embedded theme. Unknown or broken themes fall
// back to PlainTheme.
func LoadTheme(name string) *Theme {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		normalized = "default"
	}

	data, ok := themeData[normalized]
	if !ok {
		logger.Debug("Unknown theme requested, using plain theme", "theme", name, "available", ThemeNames())
		return PlainTheme()
	}

	theme, err := ParseTheme(data)
	if err != nil {
		logger.Error("Failed to load theme", "theme", normalized, "error", err)
		return PlainTheme()
	}
	return theme
}

// ParseTheme builds a Theme from YAML. Missing styles are left unstyled.
func ParseTheme(data []byte) (*Theme, error) {
	var file ThemeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}

	style := func(key string) lipgloss.Style {
		return createStyle(file.Styles[key])
	}
	return &Theme{
		Name:      file.Name,
		User:      style("user"),
		Assistant: style("assistant"),
		Welcome:   style("welcome"),
		Error:     style("error"),
		Success:   style("success"),
		Warning:   style("warning"),
		Info:      style("info"),
		Timestamp: style("timestamp"),
		Header:    style("header"),
		Muted:     style("muted"),
		Highlight: style("highlight"),
	}, nil
}

// PlainTheme has no styling at all.
func PlainTheme() *Theme {
	s := lipgloss.NewStyle()
	return &Theme{
		Name: "plain", User: s, Assistant: s, Welcome: s, Error: s, Success: s,
		Warning: s, Info: s, Timestamp: s, Header: s, Muted: s, Highlight: s,
	}
}

func createStyle(config StyleConfig) lipgloss.Style {
	style := lipgloss.NewStyle()

	if color := parseColor(config.Foreground); color != nil {
		style = style.Foreground(color)
	}
	if color := parseColor(config.Background); color != nil {
		style = style.Background(color)
	}

	if config.Bold != nil && *config.Bold {
		style = style.Bold(true)
	}
	if config.Italic != nil && *config.Italic {
		style = style.Italic(true)
	}
	if config.Underline != nil && *config.Underline {
		style = style.Underline(true)
	}
	return style
}

// parseColor accepts a colour string or a {light, dark} adaptive pair.
func parseColor(value interface{}) lipgloss.TerminalColor {
	switch v := value.(type) {
	case string:
		return lipgloss.Color(v)
	case map[string]interface{}:
		light, hasLight := v["light"].(string)
		dark, hasDark := v["dark"].(string)
		if hasLight && hasDark {
			return lipgloss.AdaptiveColor{Light: light, Dark: dark}
		}
		return nil
	default:
		return nil
	}
}
