package diffpreview

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/loog-project/docdiff/pkg/diffmap"
)

// Palette holds the colors a Theme is built from.
type Palette struct {
	Key, String, Number, Bool, Null, Date lipgloss.Color

	// foreground/background per change type
	AddedFg, AddedBg       lipgloss.Color
	RemovedFg, RemovedBg   lipgloss.Color
	ModifiedFg, ModifiedBg lipgloss.Color
}

type Theme struct {
	KeyStyle    lipgloss.Style
	StringStyle lipgloss.Style
	NumberStyle lipgloss.Style
	BoolStyle   lipgloss.Style
	NullStyle   lipgloss.Style
	DateStyle   lipgloss.Style

	AddedBg    lipgloss.Style
	RemovedBg  lipgloss.Style
	ModifiedBg lipgloss.Style
}

func NewTheme(p Palette) Theme {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	change := func(f, b lipgloss.Color) lipgloss.Style { return fg(f).Background(b) }
	return Theme{
		KeyStyle:    fg(p.Key),
		StringStyle: fg(p.String),
		NumberStyle: fg(p.Number),
		BoolStyle:   fg(p.Bool),
		NullStyle:   fg(p.Null).Italic(true),
		DateStyle:   fg(p.Date),

		AddedBg:    change(p.AddedFg, p.AddedBg),
		RemovedBg:  change(p.RemovedFg, p.RemovedBg),
		ModifiedBg: change(p.ModifiedFg, p.ModifiedBg),
	}
}

var (
	DarkTheme = NewTheme(Palette{
		Key: "#888888", String: "#61AFEF", Number: "#61AFEF",
		Bool: "#E5C07B", Null: "#888888", Date: "#C678DD",
		AddedFg: "#A9DC76", AddedBg: "#144212",
		RemovedFg: "#E06C75", RemovedBg: "#4C1F1F",
		ModifiedFg: "#E5C07B", ModifiedBg: "#3B2F00",
	})

	LightTheme = NewTheme(Palette{
		Key: "#6A737D", String: "#005CC5", Number: "#005CC5",
		Bool: "#B08800", Null: "#6A737D", Date: "#6F42C1",
		AddedFg: "#22863A", AddedBg: "#E6FFED",
		RemovedFg: "#B31D28", RemovedBg: "#FFEEF0",
		ModifiedFg: "#735C0F", ModifiedBg: "#FFF5B1",
	})

	// PlainTheme renders without any styling, for pipes and tests.
	PlainTheme = Theme{}
)

// AutoTheme picks DarkTheme or LightTheme from the terminal background.
func AutoTheme() Theme {
	if lipgloss.HasDarkBackground() {
		return DarkTheme
	}
	return LightTheme
}

func (t Theme) SyntaxHighlight(kind diffmap.Kind, content string) string {
	switch kind {
	case diffmap.KindString, diffmap.KindBinary:
		return t.StringStyle.Render(content)
	case diffmap.KindNumber:
		return t.NumberStyle.Render(content)
	case diffmap.KindBool:
		return t.BoolStyle.Render(content)
	case diffmap.KindNull:
		return t.NullStyle.Render(content)
	case diffmap.KindDate:
		return t.DateStyle.Render(content)
	default:
		return content
	}
}

func (t Theme) BackgroundHighlight(change ChangeType, content string) string {
	switch change {
	case Added:
		return t.AddedBg.Render(content)
	case Removed:
		return t.RemovedBg.Render(content)
	case Modified:
		return t.ModifiedBg.Render(content)
	default:
		return content
	}
}
