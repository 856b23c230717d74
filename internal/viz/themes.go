package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the planform layers and the side panel.
type Theme struct {
	Name     string
	Active   lipgloss.Color
	Inactive lipgloss.Color
	Oxbow    lipgloss.Color
	OldOxbow lipgloss.Color
	Sea      lipgloss.Color
	Accent   lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
}

var (
	ThemeEstuary = Theme{
		Name:     "estuary",
		Active:   lipgloss.Color("#4fc3f7"),
		Inactive: lipgloss.Color("#455a64"),
		Oxbow:    lipgloss.Color("#26a69a"),
		OldOxbow: lipgloss.Color("#1b5e20"),
		Sea:      lipgloss.Color("#1565c0"),
		Accent:   lipgloss.Color("#ffd54f"),
		Text:     lipgloss.Color("#e0f0ff"),
		Muted:    lipgloss.Color("#607d8b"),
	}

	ThemeRetroGreen = Theme{
		Name:     "retro",
		Active:   lipgloss.Color("#00ff00"),
		Inactive: lipgloss.Color("#005500"),
		Oxbow:    lipgloss.Color("#88ff88"),
		OldOxbow: lipgloss.Color("#336633"),
		Sea:      lipgloss.Color("#00cc00"),
		Accent:   lipgloss.Color("#ffff00"),
		Text:     lipgloss.Color("#00ff00"),
		Muted:    lipgloss.Color("#005500"),
	}

	ThemeSilt = Theme{
		Name:     "silt",
		Active:   lipgloss.Color("#d7ccc8"),
		Inactive: lipgloss.Color("#5d4037"),
		Oxbow:    lipgloss.Color("#a1887f"),
		OldOxbow: lipgloss.Color("#4e342e"),
		Sea:      lipgloss.Color("#0077be"),
		Accent:   lipgloss.Color("#ff9ff3"),
		Text:     lipgloss.Color("#fff5f5"),
		Muted:    lipgloss.Color("#8b6b8c"),
	}

	Themes = []Theme{ThemeEstuary, ThemeRetroGreen, ThemeSilt}
)

// GetTheme returns a theme by name, falling back to the first theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func nextTheme(current Theme) Theme {
	for i, t := range Themes {
		if t.Name == current.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
