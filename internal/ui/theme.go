package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// PlayerTheme is a compact dark theme for the player window.
type PlayerTheme struct{}

// NewPlayerTheme creates the theme.
func NewPlayerTheme() fyne.Theme {
	return &PlayerTheme{}
}

// Color returns theme colors, forcing the dark variant.
func (t *PlayerTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.RGBA{R: 24, G: 26, B: 30, A: 255}
	case theme.ColorNameForeground:
		return color.RGBA{R: 230, G: 232, B: 235, A: 255}
	case theme.ColorNamePrimary:
		return color.RGBA{R: 86, G: 156, B: 214, A: 255}
	case theme.ColorNameError:
		return color.RGBA{R: 205, G: 66, B: 66, A: 255}
	case theme.ColorNameSuccess:
		return color.RGBA{R: 78, G: 170, B: 90, A: 255}
	}
	return theme.DefaultTheme().Color(name, theme.VariantDark)
}

// Font returns theme fonts.
func (t *PlayerTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

// Icon returns theme icons.
func (t *PlayerTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size returns theme sizes with compact adjustments.
func (t *PlayerTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameText:
		return 13
	case theme.SizeNameHeadingText:
		return 16
	case theme.SizeNameScrollBar:
		return 12
	}
	return theme.DefaultTheme().Size(name)
}
