package main

import (
	"pngme/pngmeta"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// chunkColors picks the row color of a chunk in the viewer.
type chunkColors struct {
	critical tcell.Color
	public   tcell.Color
	private  tcell.Color
	invalid  tcell.Color
}

type viewerTheme struct {
	tview  tview.Theme
	chunks chunkColors
}

var colorschemes = map[string]viewerTheme{
	"default": {
		tview: tview.Theme{
			PrimitiveBackgroundColor:    tcell.ColorDefault,
			ContrastBackgroundColor:     tcell.ColorGray,
			MoreContrastBackgroundColor: tcell.ColorNavy,
			BorderColor:                 tcell.ColorGray,
			TitleColor:                  tcell.ColorRed,
			GraphicsColor:               tcell.ColorBlue,
			PrimaryTextColor:            tcell.ColorLightGray,
			SecondaryTextColor:          tcell.ColorYellow,
			TertiaryTextColor:           tcell.ColorOrange,
			InverseTextColor:            tcell.ColorPurple,
			ContrastSecondaryTextColor:  tcell.ColorLime,
		},
		chunks: chunkColors{
			critical: tcell.ColorWhite,
			public:   tcell.ColorLightGray,
			private:  tcell.ColorYellow,
			invalid:  tcell.ColorRed,
		},
	},
	"gruvbox": {
		tview: tview.Theme{
			PrimitiveBackgroundColor:    tcell.NewHexColor(0x282828),
			ContrastBackgroundColor:     tcell.ColorDarkGoldenrod,
			MoreContrastBackgroundColor: tcell.ColorDarkSlateGray,
			BorderColor:                 tcell.ColorLightGray,
			TitleColor:                  tcell.ColorRed,
			GraphicsColor:               tcell.ColorDarkCyan,
			PrimaryTextColor:            tcell.ColorLightGray,
			SecondaryTextColor:          tcell.ColorYellow,
			TertiaryTextColor:           tcell.ColorOrange,
			InverseTextColor:            tcell.ColorWhite,
			ContrastSecondaryTextColor:  tcell.ColorLightGreen,
		},
		chunks: chunkColors{
			critical: tcell.NewHexColor(0xfbf1c7),
			public:   tcell.NewHexColor(0xa89984),
			private:  tcell.NewHexColor(0xfabd2f),
			invalid:  tcell.NewHexColor(0xfb4934),
		},
	},
	"solarized": {
		tview: tview.Theme{
			PrimitiveBackgroundColor:    tcell.NewHexColor(0x002b36),
			ContrastBackgroundColor:     tcell.ColorDarkCyan,
			MoreContrastBackgroundColor: tcell.ColorDarkSlateGray,
			BorderColor:                 tcell.ColorLightBlue,
			TitleColor:                  tcell.ColorRed,
			GraphicsColor:               tcell.ColorBlue,
			PrimaryTextColor:            tcell.ColorWhite,
			SecondaryTextColor:          tcell.ColorYellow,
			TertiaryTextColor:           tcell.ColorOrange,
			InverseTextColor:            tcell.ColorWhite,
			ContrastSecondaryTextColor:  tcell.ColorLightCyan,
		},
		chunks: chunkColors{
			critical: tcell.NewHexColor(0xfdf6e3),
			public:   tcell.NewHexColor(0x93a1a1),
			private:  tcell.NewHexColor(0xb58900),
			invalid:  tcell.NewHexColor(0xdc322f),
		},
	},
}

func themeByName(name string) viewerTheme {
	if t, ok := colorschemes[name]; ok {
		return t
	}
	logger.Warn("unknown theme, using default", "theme", name)
	return colorschemes["default"]
}

func (c chunkColors) forType(ct pngmeta.ChunkType) tcell.Color {
	switch {
	case !ct.IsReservedBitValid():
		return c.invalid
	case ct.IsCritical():
		return c.critical
	case ct.IsPublic():
		return c.public
	default:
		return c.private
	}
}
