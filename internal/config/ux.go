package config

// Theme names accepted by ui.theme.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// ValidThemes lists all supported themes.
var ValidThemes = []string{ThemeAuto, ThemeLight, ThemeDark}

// UIConfig holds dashboard configuration.
type UIConfig struct {
	// Theme is auto, light or dark.
	Theme string `yaml:"theme"`

	// TableHeight is the number of visible result rows (0 = fit terminal).
	TableHeight int `yaml:"table_height,omitempty"`
}

// DefaultUIConfig returns sensible UI defaults.
func DefaultUIConfig() UIConfig {
	return UIConfig{Theme: ThemeAuto}
}
