package catalog

// All is the pseudo-category that selects every card.
const All = "All"

// Card is one flashcard. Its key is the Korean text, which is also the item
// key recorded for responses.
type Card struct {
	Korean   string `json:"kr"`
	Rom      string `json:"rom"`
	Gloss    string `json:"en"`
	Category string `json:"category"`
}

func (c Card) Key() string { return c.Korean }

// Deck is the flattened catalog: unique cards in first-seen order, grouped
// by category label.
type Deck struct {
	cards      []Card
	categories []string
	byCategory map[string][]Card
}

var objectLabels = map[string]string{
	"food":     "Food",
	"drink":    "Drinks",
	"weather":  "Weather",
	"activity": "Activities",
	"person":   "People",
	"thing":    "Things",
}

// Label maps a raw object or subject category to its display label.
func Label(category string) string {
	if l, ok := objectLabels[category]; ok {
		return l
	}
	return "Other"
}

// BuildDeck flattens v. A card whose Korean text was already seen, or is
// empty, is skipped.
func BuildDeck(v Vocab) *Deck {
	d := &Deck{byCategory: make(map[string][]Card)}
	seen := make(map[string]struct{})
	add := func(kr, rom, en, category string) {
		if kr == "" {
			return
		}
		if _, dup := seen[kr]; dup {
			return
		}
		seen[kr] = struct{}{}
		c := Card{Korean: kr, Rom: rom, Gloss: en, Category: category}
		d.cards = append(d.cards, c)
		if _, ok := d.byCategory[category]; !ok {
			d.categories = append(d.categories, category)
		}
		d.byCategory[category] = append(d.byCategory[category], c)
	}

	for _, w := range v.Action.Times {
		add(w.Kr, w.Rom, w.En, "Time")
	}
	for _, w := range v.Action.Places {
		add(w.Kr, w.Rom, w.En, "Places")
	}
	for _, w := range v.Action.Objects {
		add(w.Kr, w.Rom, w.En, Label(w.Category))
	}
	for _, vb := range v.Action.Verbs {
		add(vb.Present, vb.PresentRom, vb.En+" (present)", "Verbs")
		add(vb.Past, vb.PastRom, vb.PastEn+" (past)", "Verbs")
		add(vb.Future, vb.FutureRom, vb.FutureEn+" (future)", "Verbs")
	}
	for _, w := range v.Describe.Subjects {
		add(w.Kr, w.Rom, w.En, Label(w.Category))
	}
	for _, w := range v.Describe.Adjectives {
		add(w.Kr, w.Rom, w.En, "Adjectives")
	}
	for _, w := range v.Describe.Adverbs {
		add(w.Kr, w.Rom, w.En, "Adverbs")
	}
	for _, cat := range v.Flashcards.Categories {
		for _, w := range cat.Cards {
			add(w.Kr, w.Rom, w.En, cat.Name)
		}
	}
	return d
}

// Cards returns every card in first-seen order.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

func (d *Deck) Len() int { return len(d.cards) }

// Categories lists category labels in first-seen order, without All.
func (d *Deck) Categories() []string {
	out := make([]string, len(d.categories))
	copy(out, d.categories)
	return out
}

// Filter returns the cards of one category; All or "" returns every card.
// An unknown category yields an empty slice.
func (d *Deck) Filter(category string) []Card {
	if category == "" || category == All {
		return d.Cards()
	}
	src := d.byCategory[category]
	out := make([]Card, len(src))
	copy(out, src)
	return out
}

// Lookup finds a card by key.
func (d *Deck) Lookup(key string) (Card, bool) {
	for _, c := range d.cards {
		if c.Korean == key {
			return c, true
		}
	}
	return Card{}, false
}
