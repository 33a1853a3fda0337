package practice

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/example/vocab-tracker/services/tracker/internal/catalog"
	"github.com/example/vocab-tracker/services/tracker/internal/progress"
)

// Recorder is the engine's write side.
type Recorder interface {
	Record(ctx context.Context, resp progress.Response) (progress.Event, error)
}

// Direction selects which side of the card is shown first.
type Direction int

const (
	KoreanFirst Direction = iota
	EnglishFirst
)

func (d Direction) String() string {
	if d == EnglishFirst {
		return "EN → KR"
	}
	return "KR → EN"
}

const source = "flashcard"

var (
	frontStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(1, 4)
	backStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).PaddingLeft(4)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	knowStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	unsureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dontStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

// Model is the bubbletea flashcard screen.
type Model struct {
	ctx     context.Context
	rec     Recorder
	mastery progress.MasteryReader
	deck    []catalog.Card
	seq     *Sequence[catalog.Card]
	keys    keyMap

	flipped   bool
	direction Direction
	review    bool
	notice    string
}

// New starts on the whole deck, weakest cards first.
func New(ctx context.Context, rec Recorder, mastery progress.MasteryReader, cards []catalog.Card) Model {
	ordered := progress.OrderByMastery(mastery, cards)
	return Model{
		ctx:     ctx,
		rec:     rec,
		mastery: mastery,
		deck:    ordered,
		seq:     NewSequence(ordered),
		keys:    defaultKeys(),
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(km, m.keys.Flip):
		m.flipped = !m.flipped
	case key.Matches(km, m.keys.Know):
		m.answer(progress.OutcomeKnow)
	case key.Matches(km, m.keys.Unsure):
		m.answer(progress.OutcomeUnsure)
	case key.Matches(km, m.keys.DontKnow):
		m.answer(progress.OutcomeDontKnow)
	case key.Matches(km, m.keys.Prev):
		m.seq.Prev()
		m.flipped = false
	case key.Matches(km, m.keys.Next):
		m.seq.Next()
		m.flipped = false
	case key.Matches(km, m.keys.Shuffle):
		m.seq.Shuffle(nil)
		m.flipped = false
	case key.Matches(km, m.keys.Direction):
		m.direction = 1 - m.direction
		m.flipped = false
	case key.Matches(km, m.keys.Review):
		m.toggleReview()
	}
	return m, nil
}

func (m *Model) answer(o progress.Outcome) {
	card, ok := m.seq.Current()
	if !ok {
		return
	}
	m.notice = ""
	if _, err := m.rec.Record(m.ctx, progress.Response{
		ItemKey:   card.Key(),
		ItemGloss: card.Gloss,
		Outcome:   o,
		Category:  card.Category,
		Source:    source,
	}); err != nil {
		m.notice = "not saved: " + err.Error()
	}
	m.seq.Answer(o)
	m.flipped = false
}

func (m *Model) toggleReview() {
	m.flipped = false
	if m.review {
		m.review = false
		m.seq = NewSequence(m.deck)
		return
	}
	m.review = true
	m.seq = NewSequence(progress.WeakOnly(m.mastery, m.deck))
}

func (m Model) View() string {
	var b strings.Builder
	if m.review {
		b.WriteString(bannerStyle.Render("Reviewing weak cards (w to exit)"))
		b.WriteString("\n")
	}

	card, ok := m.seq.Current()
	if !ok {
		empty := "No cards"
		if m.review {
			empty = "All clear!"
		}
		b.WriteString(frontStyle.Render(empty))
		b.WriteString("\n0 / 0\n")
	} else {
		front, back := card.Korean, card.Gloss
		if m.direction == EnglishFirst {
			front, back = card.Gloss, card.Korean
		}
		b.WriteString(frontStyle.Render(front + badge(m.mastery, card)))
		b.WriteString("\n")
		if m.flipped {
			b.WriteString(backStyle.Render(back))
			b.WriteString("\n")
			if card.Rom != "" {
				b.WriteString(backStyle.Render(mutedStyle.Render(card.Rom)))
				b.WriteString("\n")
			}
		}
		fmt.Fprintf(&b, "%d / %d  %s  %s\n", m.seq.Position()+1, m.seq.Len(), mutedStyle.Render(card.Category), mutedStyle.Render(m.direction.String()))
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(dontStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.helpLine())
	return b.String()
}

func (m Model) statusLine() string {
	current := progress.Tally(m.mastery, m.seq.Items())
	all := progress.Tally(m.mastery, m.deck)
	return fmt.Sprintf("%s  %s  %s   %s",
		knowStyle.Render(fmt.Sprintf("✓%d", current.Know)),
		unsureStyle.Render(fmt.Sprintf("?%d", current.Unsure)),
		dontStyle.Render(fmt.Sprintf("✗%d", current.DontKnow)),
		mutedStyle.Render(fmt.Sprintf("Review Weak (%d)", all.Weak())),
	)
}

func (m Model) helpLine() string {
	parts := make([]string, 0, len(m.keys.help()))
	for _, k := range m.keys.help() {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return mutedStyle.Render(strings.Join(parts, " • "))
}

func badge(r progress.MasteryReader, c catalog.Card) string {
	rec, ok := r.Snapshot()[c.Key()]
	if !ok {
		return ""
	}
	switch rec.Status {
	case progress.OutcomeKnow:
		return " " + knowStyle.Render("●")
	case progress.OutcomeUnsure:
		return " " + unsureStyle.Render("●")
	case progress.OutcomeDontKnow:
		return " " + dontStyle.Render("●")
	}
	return ""
}
