// Package ui implements the interactive revision browser.
package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/loog-project/docdiff/internal/service"
	"github.com/loog-project/docdiff/internal/store"
	"github.com/loog-project/docdiff/internal/util"
	"github.com/loog-project/docdiff/pkg/diffmap"
	"github.com/loog-project/docdiff/pkg/diffpreview"
)

const (
	arrowRight = "▸"

	pageScrollSkip = 5
	sizeSkip       = 2
)

type renderMode uint

const (
	modeShowObjectYAML renderMode = iota
	modeShowObjectJSON
	modeShowPatchPretty
	modeShowPatchLines
	modeShowPatchJSON

	_modeMax // only a helper to get the number of modes
)

func (r renderMode) String() string {
	switch r {
	case modeShowObjectYAML:
		return "object (yaml)"
	case modeShowObjectJSON:
		return "object (json)"
	case modeShowPatchPretty:
		return "patch (pretty)"
	case modeShowPatchLines:
		return "patch (lines)"
	case modeShowPatchJSON:
		return "patch (json)"
	default:
		return "unknown"
	}
}

// RevisionSource is the part of the tracker service the browser reads from.
type RevisionSource interface {
	History(ctx context.Context, objID string) ([]service.RevisionInfo, error)
	Restore(ctx context.Context, objID string, rev store.RevisionID) (*store.Snapshot, error)
}

var _ RevisionSource = (*service.TrackerService)(nil)

type historyMsg struct {
	revs []service.RevisionInfo
	err  error
}

// Browser lists the revisions of one object on the left and previews the
// selected revision on the right.
type Browser struct {
	ctx   context.Context
	src   RevisionSource
	objID string

	Theme        Theme
	PreviewTheme diffpreview.Theme

	width, height int
	left, right   viewport.Model
	leftExtra     int

	revs []service.RevisionInfo
	err  error

	// ui state
	cursor     int
	focusRight bool
	renderMode renderMode
	fullscreen bool
	highlight  bool
}

var _ tea.Model = (*Browser)(nil)

func NewBrowser(ctx context.Context, src RevisionSource, objID string) *Browser {
	return &Browser{
		ctx:          ctx,
		src:          src,
		objID:        objID,
		Theme:        DarkTheme,
		PreviewTheme: diffpreview.AutoTheme(),

		left:  viewport.New(5, 5), // will be overwritten by setSize
		right: viewport.New(5, 5), // will be overwritten by setSize
	}
}

func (b *Browser) Init() tea.Cmd {
	return b.loadHistory
}

func (b *Browser) loadHistory() tea.Msg {
	revs, err := b.src.History(b.ctx, b.objID)
	return historyMsg{revs: revs, err: err}
}

func (b *Browser) setSize(width, height int) {
	b.width, b.height = width, height
	b.calculateViewportSizes()
}

func (b *Browser) calculateViewportSizes() {
	bodyHeight := b.height - 1 // status bar
	if b.fullscreen {
		b.right.Width, b.right.Height = b.width, bodyHeight
		return
	}
	leftWidth := (b.width/3 + b.leftExtra) - 2             // 2 for border right and left
	b.left.Width, b.left.Height = leftWidth, bodyHeight-2 // -2 for viewport border

	rightWidth := b.width - leftWidth - 4                    // 4 for both borders
	b.right.Width, b.right.Height = rightWidth, bodyHeight-2 // -2 for viewport border
}

func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		b.setSize(v.Width, v.Height)

	case historyMsg:
		b.revs, b.err = v.revs, v.err
		if len(b.revs) > 0 {
			// start on the newest revision
			b.cursor = len(b.revs) - 1
			b.keepVisible()
		}

	case tea.KeyMsg:
		if cmd := b.handleKey(v); cmd != nil {
			return b, cmd
		}
	}

	b.renderLeft()
	b.renderRight()
	return b, nil
}

func (b *Browser) View() string {
	var body string
	if b.fullscreen {
		body = b.right.View()
	} else {
		leftBox := ternary(b.focusRight, b.Theme.BorderIdleContainerStyle, b.Theme.BorderActiveContainerStyle).
			Render(b.left.View())
		rightBox := ternary(b.focusRight, b.Theme.BorderActiveContainerStyle, b.Theme.BorderIdleContainerStyle).
			Render(b.right.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, b.statusBar())
}

func (b *Browser) statusBar() string {
	return fmt.Sprintf("%s [mode: %s] %s",
		b.Theme.BreadcrumbBarStyle.Render(b.objID),
		b.Theme.PrimaryTextStyle.Render(b.renderMode.String()),
		NewKeyHelp("q", "quit", "⇥", "focus", "p", "mode").
			Add("h", "highlight "+ternary(b.highlight, "off", "on")).
			AddIf(!b.focusRight, "↑/↓/pgup/pgdn", "select").
			AddIf(!b.focusRight, "+/-", "resize").
			AddIf(b.focusRight, "↑/↓/←/→", "scroll").
			AddIf(b.focusRight, "f", "fullscreen").
			Render(b.Theme))
}

func (b *Browser) handleKey(k tea.KeyMsg) tea.Cmd {
	switch k.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "tab":
		b.focusRight = !b.focusRight
	case "p":
		b.renderMode = (b.renderMode + 1) % _modeMax
	case "h":
		b.highlight = !b.highlight
	case "f":
		b.fullscreen = !b.fullscreen
		b.calculateViewportSizes()
	case "+", "-":
		limit := b.width/3 - 8
		step := ternary(k.String() == "+", sizeSkip, -sizeSkip)
		b.leftExtra = util.Clamp(b.leftExtra+step, -limit, limit)
		b.calculateViewportSizes()
	default:
		if b.focusRight {
			scrollViewport(k, &b.right)
		} else {
			b.navigateLeft(k)
		}
	}
	return nil
}

func (b *Browser) navigateLeft(k tea.KeyMsg) {
	if len(b.revs) == 0 {
		return
	}
	last := len(b.revs) - 1
	switch k.String() {
	case "up", "k":
		b.cursor = util.Clamp(b.cursor-1, 0, last)
	case "down", "j":
		b.cursor = util.Clamp(b.cursor+1, 0, last)
	case "pgup":
		b.cursor = util.Clamp(b.cursor-pageScrollSkip, 0, last)
	case "pgdown":
		b.cursor = util.Clamp(b.cursor+pageScrollSkip, 0, last)
	case "home", "g":
		b.cursor = 0
	case "end", "G":
		b.cursor = last
	}
	b.keepVisible()
	b.right.GotoTop()
}

func (b *Browser) keepVisible() {
	if b.cursor < b.left.YOffset {
		b.left.YOffset = b.cursor
	}
	if b.cursor >= b.left.YOffset+b.left.Height {
		b.left.YOffset = b.cursor - b.left.Height + 1
	}
}

func (b *Browser) renderLeft() {
	if len(b.revs) == 0 {
		b.left.SetContent(b.Theme.MutedTextStyle.Render("no revisions"))
		return
	}
	var sb strings.Builder
	for i, rev := range b.revs {
		isSelected := i == b.cursor
		kind := ternary(rev.Snapshot,
			b.Theme.ListSnapshotTextStyle.Render("snapshot"),
			b.Theme.ListPatchTextStyle.Render("patch   "))
		_, _ = fmt.Fprintf(&sb, "%s %s %s %s\n",
			ternary(isSelected, b.Theme.ListCurrentArrowTextStyle.Render(arrowRight), " "),
			ternary(isSelected, b.Theme.ListCurrentArrowTextStyle, b.Theme.ListRevisionTextStyle).
				Render(rev.ID.String()),
			kind,
			b.Theme.MutedTextStyle.Render(humanize.Time(rev.Time)))
	}
	b.left.SetContent(strings.TrimSuffix(sb.String(), "\n"))
}

func (b *Browser) renderRight() {
	if b.err != nil {
		b.right.SetContent(b.Theme.ErrorTextStyle.Render("cannot load history: " + b.err.Error()))
		return
	}
	if len(b.revs) == 0 {
		b.right.SetContent(b.Theme.MutedTextStyle.Render("nothing committed for " + b.objID))
		return
	}

	cur, err := b.src.Restore(b.ctx, b.objID, b.revs[b.cursor].ID)
	if err != nil {
		b.right.SetContent(b.Theme.ErrorTextStyle.Render("cannot restore revision: " + err.Error()))
		return
	}
	var previous diffmap.Document
	if b.cursor > 0 {
		prev, err := b.src.Restore(b.ctx, b.objID, b.revs[b.cursor-1].ID)
		if err != nil {
			b.right.SetContent(b.Theme.ErrorTextStyle.Render("cannot restore previous revision: " + err.Error()))
			return
		}
		previous = prev.Object
	}

	content, err := b.renderPreview(previous, cur.Object)
	if err != nil {
		content = b.Theme.ErrorTextStyle.Render("cannot render revision: " + err.Error())
	}
	b.right.SetContent(content)
}

func (b *Browser) renderPreview(previous, current diffmap.Document) (string, error) {
	switch b.renderMode {
	case modeShowObjectYAML:
		out, err := yaml.Marshal(current)
		return string(out), err

	case modeShowObjectJSON:
		out, err := json.MarshalIndent(current, "", "  ")
		return string(out), err
	}

	u := diffmap.Diff(previous, current)
	if u.IsEmpty() {
		return b.Theme.MutedTextStyle.Render("no difference between versions"), nil
	}
	switch b.renderMode {
	case modeShowPatchPretty:
		return diffpreview.RenderTreeWithOptions(previous, u, b.PreviewTheme, diffpreview.RenderOptions{
			IndentSize:                2,
			EnableBackgroundHighlight: b.highlight,
		}), nil
	case modeShowPatchLines:
		return diffpreview.Render(u, b.PreviewTheme), nil
	case modeShowPatchJSON:
		out, err := json.MarshalIndent(u, "", "  ")
		return string(out), err
	default:
		return "", fmt.Errorf("unknown render mode %d", b.renderMode)
	}
}

func scrollViewport(k tea.KeyMsg, vp *viewport.Model) {
	switch k.String() {
	case "up", "k":
		vp.ScrollUp(1)
	case "down", "j":
		vp.ScrollDown(1)
	case "pgup":
		vp.PageUp()
	case "pgdown":
		vp.PageDown()
	case "left":
		vp.ScrollLeft(1)
	case "right":
		vp.ScrollRight(1)
	}
}

// ternary returns one of two values based on a boolean condition.
// it should be used for rendering purposes only.
func ternary[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
