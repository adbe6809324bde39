package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/conpac/engine"
	"github.com/brensch/conpac/game"
)

var (
	liveStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#33cc66"))
	playerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffdd00")).Bold(true)
	itemStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb8ae"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#303030"))

	boardStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#2121de"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffdd00"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Italic(true)
	overStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444")).
			Border(lipgloss.DoubleBorder()).Padding(0, 2)
	helpStyle = lipgloss.NewStyle().Faint(true)
)

// Each cell is two characters wide so the board looks square.
const (
	glyphLive   = "██"
	glyphItem   = " ·"
	glyphEmpty  = " ."
	glyphGhost  = "ᗣ "
	glyphClosed = "● "
)

var mouthGlyphs = map[game.Direction]string{
	game.Right: "ᗧ ",
	game.Left:  "ᗤ ",
	game.Up:    "ᗢ ",
	game.Down:  "ᗥ ",
}

// cellGlyphs caches rendered cells; the board re-renders every tick.
type cellGlyphs struct {
	color  bool
	live   string
	item   string
	empty  string
	ghosts map[string]string
}

func newCellGlyphs(color bool) *cellGlyphs {
	g := &cellGlyphs{color: color, ghosts: map[string]string{}}
	g.live = g.paint(liveStyle, glyphLive)
	g.item = g.paint(itemStyle, glyphItem)
	g.empty = g.paint(emptyStyle, glyphEmpty)
	return g
}

func (g *cellGlyphs) paint(s lipgloss.Style, text string) string {
	if !g.color {
		return text
	}
	return s.Render(text)
}

func (g *cellGlyphs) ghost(color string) string {
	if s, ok := g.ghosts[color]; ok {
		return s
	}
	s := g.paint(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true), glyphGhost)
	g.ghosts[color] = s
	return s
}

func (g *cellGlyphs) player(p game.Player, mouthOpen bool) string {
	glyph := glyphClosed
	if mouthOpen {
		glyph = mouthGlyphs[p.Facing]
	}
	if !p.Alive {
		glyph = "✖ "
	}
	return g.paint(playerStyle, glyph)
}

var glyphCache = map[bool]*cellGlyphs{}

func glyphsFor(color bool) *cellGlyphs {
	g, ok := glyphCache[color]
	if !ok {
		g = newCellGlyphs(color)
		glyphCache[color] = g
	}
	return g
}

// renderBoard draws s with ghosts over the player over live cells over items.
func renderBoard(s *game.Session, color bool) string {
	glyphs := glyphsFor(color)

	ghosts := make(map[game.Point]string, len(s.Ghosts))
	for _, g := range s.Ghosts {
		if _, taken := ghosts[g.Pos]; !taken {
			ghosts[g.Pos] = g.Color
		}
	}
	items := make(map[game.Point]bool, len(s.Collectibles))
	for _, c := range s.Collectibles {
		if !c.Collected {
			items[c.Pos] = true
		}
	}

	var b strings.Builder
	for y := 0; y < s.Grid.Size; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < s.Grid.Size; x++ {
			p := game.Point{X: x, Y: y}
			if c, ok := ghosts[p]; ok {
				b.WriteString(glyphs.ghost(c))
				continue
			}
			switch {
			case p == s.Player.Pos:
				b.WriteString(glyphs.player(s.Player, s.MouthOpen))
			case s.Grid.Alive(p):
				b.WriteString(glyphs.live)
			case items[p]:
				b.WriteString(glyphs.item)
			default:
				b.WriteString(glyphs.empty)
			}
		}
	}
	return b.String()
}

func render(m *model) string {
	s := m.engine.Session()
	e := m.engine

	paint := func(st lipgloss.Style, text string) string {
		if !m.color {
			return text
		}
		return st.Render(text)
	}

	var b strings.Builder
	b.WriteString(paint(titleStyle, "CONPAC"))
	b.WriteString(paint(labelStyle, fmt.Sprintf("  %s · %s", e.Config().Name, e.State())))
	b.WriteByte('\n')

	board := renderBoard(s, m.color)
	if m.color {
		board = boardStyle.Render(board)
	}
	b.WriteString(board)
	b.WriteByte('\n')

	b.WriteString(fmt.Sprintf("%s %d   %s %d   %s %d   %s %d\n",
		paint(labelStyle, "score"), s.Score,
		paint(labelStyle, "gen"), s.Generation,
		paint(labelStyle, "total"), s.Total(),
		paint(labelStyle, "left"), s.Remaining()))
	if m.stats != nil {
		b.WriteString(paint(labelStyle, fmt.Sprintf("played %d   best %d   last %d\n",
			m.lastStats.Played, m.lastStats.Best, m.lastStats.Last)))
	}

	for _, text := range m.ui.active() {
		b.WriteString(paint(noticeStyle, text))
		b.WriteByte('\n')
	}

	switch e.State() {
	case engine.StateOver:
		if res, ok := e.Result(); ok {
			msg := fmt.Sprintf("%s Score: %d", res.Message, res.Total)
			if m.color {
				msg = overStyle.Render(msg)
			}
			b.WriteString(msg)
			b.WriteByte('\n')
		}
		b.WriteString(paint(helpStyle, "r: play again · q: quit"))
	case engine.StateIdle:
		b.WriteString(paint(helpStyle, "arrows/wasd: move to start · q: quit"))
	default:
		b.WriteString(paint(helpStyle, "arrows/wasd: move · space: pause · r: reset · q: quit"))
	}
	b.WriteByte('\n')
	return b.String()
}
