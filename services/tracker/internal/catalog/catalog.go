// Package catalog loads the vocabulary file and flattens it into a deck of
// flashcards. The catalog is read-only input: recording never checks item
// keys against it.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Vocab mirrors the vocabulary file. It may be written as JSON or YAML.
type Vocab struct {
	Action     Action     `json:"action" yaml:"action"`
	Describe   Describe   `json:"describe" yaml:"describe"`
	Flashcards Flashcards `json:"flashcards" yaml:"flashcards"`
}

type Action struct {
	Times   []Word `json:"times" yaml:"times"`
	Places  []Word `json:"places" yaml:"places"`
	Objects []Word `json:"objects" yaml:"objects"`
	Verbs   []Verb `json:"verbs" yaml:"verbs"`
}

type Describe struct {
	Subjects   []Word `json:"subjects" yaml:"subjects"`
	Adjectives []Word `json:"adjectives" yaml:"adjectives"`
	Adverbs    []Word `json:"adverbs" yaml:"adverbs"`
}

type Flashcards struct {
	Categories []FlashcardCategory `json:"categories" yaml:"categories"`
}

type FlashcardCategory struct {
	Name  string `json:"name" yaml:"name"`
	Cards []Word `json:"cards" yaml:"cards"`
}

type Word struct {
	Kr       string `json:"kr" yaml:"kr"`
	Rom      string `json:"rom" yaml:"rom"`
	En       string `json:"en" yaml:"en"`
	Category string `json:"category" yaml:"category"`
}

// Verb carries the three conjugations drilled as separate cards.
type Verb struct {
	En         string `json:"en" yaml:"en"`
	Present    string `json:"present" yaml:"present"`
	PresentRom string `json:"presentRom" yaml:"presentRom"`
	Past       string `json:"past" yaml:"past"`
	PastRom    string `json:"pastRom" yaml:"pastRom"`
	PastEn     string `json:"pastEn" yaml:"pastEn"`
	Future     string `json:"future" yaml:"future"`
	FutureRom  string `json:"futureRom" yaml:"futureRom"`
	FutureEn   string `json:"futureEn" yaml:"futureEn"`
}

// Parse decodes a vocabulary document. JSON input is decoded as JSON so
// tab-indented files work; anything else is treated as YAML.
func Parse(data []byte) (Vocab, error) {
	var v Vocab
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return v, nil
	}
	if json.Valid(trimmed) {
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return Vocab{}, fmt.Errorf("catalog: decode json: %w", err)
		}
		return v, nil
	}
	if err := yaml.Unmarshal(trimmed, &v); err != nil {
		return Vocab{}, fmt.Errorf("catalog: decode yaml: %w", err)
	}
	return v, nil
}

// Load reads and parses the vocabulary file at path and builds its deck.
func Load(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return BuildDeck(v), nil
}
