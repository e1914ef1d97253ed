package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// ThemeFile is the name of the user theme inside the config directory.
const ThemeFile = "theme.yaml"

// ResolveTheme loads a theme with the following precedence:
//  1. NO_COLOR env var set: NoColorTheme
//  2. TODO_THEME env var: path to a theme file
//  3. theme.yaml in configDir
//  4. DefaultTheme
func ResolveTheme(configDir string) Theme {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return NoColorTheme()
	}

	if path := os.Getenv("TODO_THEME"); path != "" {
		if theme, err := LoadThemeFromFile(path); err == nil {
			return theme
		}
	}

	if configDir != "" {
		if theme, err := LoadThemeFromFile(filepath.Join(configDir, ThemeFile)); err == nil {
			return theme
		}
	}

	return DefaultTheme()
}

// NoColorTheme returns a theme with empty colors.
// Lipgloss treats empty strings as "no color".
func NoColorTheme() Theme {
	var empty lipgloss.AdaptiveColor
	return Theme{
		Primary:    empty,
		Secondary:  empty,
		Success:    empty,
		Warning:    empty,
		Error:      empty,
		Muted:      empty,
		Foreground: empty,
		Border:     empty,
	}
}

// themeFile is the on-disk theme format. Each key holds a hex color used
// for dark terminals; light variants keep their defaults.
//
//	primary: "#89b4fa"
//	error: "#f38ba8"
type themeFile struct {
	Primary    string `yaml:"primary"`
	Secondary  string `yaml:"secondary"`
	Success    string `yaml:"success"`
	Warning    string `yaml:"warning"`
	Error      string `yaml:"error"`
	Muted      string `yaml:"muted"`
	Foreground string `yaml:"foreground"`
	Border     string `yaml:"border"`
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// LoadThemeFromFile parses a YAML theme file. Invalid colors are ignored.
func LoadThemeFromFile(path string) (Theme, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path from trusted config
	if err != nil {
		return Theme{}, err
	}

	var f themeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Theme{}, fmt.Errorf("parsing theme %s: %w", path, err)
	}

	t := DefaultTheme()
	override(&t.Primary, f.Primary)
	override(&t.Secondary, f.Secondary)
	override(&t.Success, f.Success)
	override(&t.Warning, f.Warning)
	override(&t.Error, f.Error)
	override(&t.Muted, f.Muted)
	override(&t.Foreground, f.Foreground)
	override(&t.Border, f.Border)
	return t, nil
}

func override(c *lipgloss.AdaptiveColor, value string) {
	if hexColor.MatchString(value) {
		c.Dark = value
	}
}
