package practice

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Flip      key.Binding
	Know      key.Binding
	Unsure    key.Binding
	DontKnow  key.Binding
	Prev      key.Binding
	Next      key.Binding
	Shuffle   key.Binding
	Review    key.Binding
	Direction key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Flip:      key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "flip")),
		Know:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "know")),
		Unsure:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "unsure")),
		DontKnow:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "don't know")),
		Prev:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev")),
		Next:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next")),
		Shuffle:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shuffle")),
		Review:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "review weak")),
		Direction: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "direction")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Flip, k.Know, k.Unsure, k.DontKnow, k.Prev, k.Next, k.Shuffle, k.Review, k.Direction, k.Quit}
}
