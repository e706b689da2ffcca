package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

const defaultThemeFile = `# Reason color theme.
# Colors are hex values or palette.<name> references.

meta:
  name: Reason Default
  version: 1

palette:
  fg: "#cdd6f4"
  muted: "#7f8ca3"
  accent: "#cba6f7"
  success: "#a6e3a1"
  warning: "#f9e2af"
  danger: "#f38ba8"

borders:
  style: rounded
  color: palette.muted

icons:
  mode: unicode

components:
  table_header:
    fg: palette.accent
    bold: true
  table_body:
    fg: palette.fg
  prompt:
    fg: palette.success
    bold: true
  message:
    fg: palette.fg
  error:
    fg: palette.danger
    bold: true`

type Meta struct {
	Name    string `yaml:"name"`
	Version int    `yaml:"version"`
}

type Palette struct {
	FG      string `yaml:"fg"`
	Muted   string `yaml:"muted"`
	Accent  string `yaml:"accent"`
	Success string `yaml:"success"`
	Warning string `yaml:"warning"`
	Danger  string `yaml:"danger"`
}

type Borders struct {
	Style string `yaml:"style"`
	Color string `yaml:"color"`
}

type StyleSpec struct {
	FG     string `yaml:"fg"`
	BG     string `yaml:"bg"`
	Bold   bool   `yaml:"bold"`
	Italic bool   `yaml:"italic"`
	Faint  bool   `yaml:"faint"`
}

type ComponentStyles struct {
	TableHeader StyleSpec `yaml:"table_header"`
	TableBody   StyleSpec `yaml:"table_body"`
	Prompt      StyleSpec `yaml:"prompt"`
	Message     StyleSpec `yaml:"message"`
	Error       StyleSpec `yaml:"error"`
}

type Icons struct {
	Mode  string `yaml:"mode"`
	Added string `yaml:"added"`
	Read  string `yaml:"read"`
	File  string `yaml:"file"`
	Note  string `yaml:"note"`
}

type IconSet struct {
	Added string
	Read  string
	File  string
	Note  string
}

type Theme struct {
	Meta       Meta            `yaml:"meta"`
	Palette    Palette         `yaml:"palette"`
	Borders    Borders         `yaml:"borders"`
	Icons      Icons           `yaml:"icons"`
	Components ComponentStyles `yaml:"components"`
}

func Default() Theme {
	return Theme{
		Meta: Meta{Name: "Reason Default", Version: 1},
		Palette: Palette{
			FG:      "#cdd6f4",
			Muted:   "#7f8ca3",
			Accent:  "#cba6f7",
			Success: "#a6e3a1",
			Warning: "#f9e2af",
			Danger:  "#f38ba8",
		},
		Borders: Borders{
			Style: "rounded",
			Color: "palette.muted",
		},
		Icons: Icons{Mode: "unicode"},
		Components: ComponentStyles{
			TableHeader: StyleSpec{FG: "palette.accent", Bold: true},
			TableBody:   StyleSpec{FG: "palette.fg"},
			Prompt:      StyleSpec{FG: "palette.success", Bold: true},
			Message:     StyleSpec{FG: "palette.fg"},
			Error:       StyleSpec{FG: "palette.danger", Bold: true},
		},
	}
}

// Plain is a theme without colors, used when output is not a terminal.
func Plain() Theme {
	return Theme{
		Meta:    Meta{Name: "Plain", Version: 1},
		Borders: Borders{Style: "ascii"},
		Icons:   Icons{Mode: "off"},
	}
}

// LoadFrom loads the theme from the provided path. When path is empty it falls
// back to the default theme path under the config directory. A missing file
// is created from the default theme.
func LoadFrom(path string) (Theme, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		var err error
		resolved, err = Path()
		if err != nil {
			return Theme{}, err
		}
	}
	base := Default()
	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := ensureDefaultTheme(resolved); err != nil {
				return base, err
			}
			return base, nil
		}
		return base, err
	}
	if err := yaml.Unmarshal(data, &base); err != nil {
		return base, fmt.Errorf("parse theme: %w", err)
	}
	return base, nil
}

// Path returns the default theme location.
func Path() (string, error) {
	cfgHome := os.Getenv("XDG_CONFIG_HOME")
	if cfgHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		cfgHome = filepath.Join(home, ".config")
	}
	return filepath.Join(cfgHome, "reason", "theme.yaml"), nil
}

// Color resolves a palette reference or returns the value unchanged.
func (t Theme) Color(value string) lipgloss.TerminalColor {
	value = strings.TrimSpace(value)
	if name, ok := strings.CutPrefix(value, "palette."); ok {
		switch strings.ToLower(name) {
		case "fg":
			value = t.Palette.FG
		case "muted":
			value = t.Palette.Muted
		case "accent":
			value = t.Palette.Accent
		case "success":
			value = t.Palette.Success
		case "warning":
			value = t.Palette.Warning
		case "danger":
			value = t.Palette.Danger
		default:
			value = ""
		}
	}
	if value == "" {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(value)
}

func (t Theme) Style(spec StyleSpec) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Color(spec.FG)).
		Background(t.Color(spec.BG)).
		Bold(spec.Bold).
		Italic(spec.Italic).
		Faint(spec.Faint)
}

func (t Theme) Border() lipgloss.Border {
	switch strings.ToLower(strings.TrimSpace(t.Borders.Style)) {
	case "normal":
		return lipgloss.NormalBorder()
	case "thick":
		return lipgloss.ThickBorder()
	case "double":
		return lipgloss.DoubleBorder()
	case "hidden":
		return lipgloss.HiddenBorder()
	case "ascii":
		return lipgloss.ASCIIBorder()
	default:
		return lipgloss.RoundedBorder()
	}
}

func (t Theme) BorderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Color(t.Borders.Color))
}

func (t Theme) IconSet() IconSet {
	mode := strings.ToLower(strings.TrimSpace(t.Icons.Mode))
	var base IconSet
	switch mode {
	case "nerd":
		base = IconSet{Added: "\uf067", Read: "\uf00c", File: "\uf1c1", Note: "\uf044"}
	case "ascii":
		base = IconSet{Added: "+", Read: "v", File: "f", Note: "n"}
	case "off":
		base = IconSet{}
	default:
		// unicode default
		base = IconSet{Added: "○", Read: "✓", File: "▣", Note: "✎"}
	}
	if t.Icons.Added != "" {
		base.Added = t.Icons.Added
	}
	if t.Icons.Read != "" {
		base.Read = t.Icons.Read
	}
	if t.Icons.File != "" {
		base.File = t.Icons.File
	}
	if t.Icons.Note != "" {
		base.Note = t.Icons.Note
	}
	return base
}

func ensureDefaultTheme(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	data := []byte(defaultThemeFile + "\n")
	return os.WriteFile(path, data, 0o644)
}
