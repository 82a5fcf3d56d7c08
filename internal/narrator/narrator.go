// Package narrator turns a single weather observation into a short
// Portuguese sentence using a vocabulary-driven decision table.
package narrator

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	ruleFallback = "fallback"
	bucketNone   = "none"
)

// storyData is what templates see.
type storyData struct {
	City      string
	Condition string
	TempMax   string
}

// Narrator is a pure function over observations. It holds no mutable state
// and may be shared between goroutines.
type Narrator struct {
	vocab *Vocabulary
}

// New creates a Narrator backed by vocab.
func New(vocab *Vocabulary) *Narrator {
	return &Narrator{vocab: vocab}
}

// Vocabulary exposes the table the narrator classifies with.
func (n *Narrator) Vocabulary() *Vocabulary {
	return n.vocab
}

// Narrate returns the story for one observation. It never returns an empty
// string.
func (n *Narrator) Narrate(obs weather.Observation) string {
	return n.Explain(obs).Text
}

// Explain returns the story together with the bucket and rule that chose it.
//
// Order: the first temperature bucket holding temp_max, then its rules in
// order, then its default unless the label is in one of the bucket's
// yield_to sets. Observations left without a story go through the
// condition-only rules and finally the fallback.
func (n *Narrator) Explain(obs weather.Observation) weather.Story {
	label := normalizeLabel(obs.Condition)
	data := storyData{
		City:      obs.City,
		Condition: obs.Condition,
		TempMax:   formatTemp(obs.TempMax),
	}

	bucketName := bucketNone
	if b, ok := n.bucketFor(obs.TempMax); ok {
		bucketName = b.name
		for _, r := range b.rules {
			if n.vocab.contains(r.set, label) {
				return n.story(bucketName, r.name, r.tmpl, data)
			}
		}
		if !n.inAny(b.yieldTo, label) {
			return n.story(bucketName, b.name+"/default", b.def, data)
		}
	}

	for _, r := range n.vocab.conditions {
		if n.vocab.contains(r.set, label) {
			return n.story(bucketName, r.name, r.tmpl, data)
		}
	}

	return n.story(bucketName, ruleFallback, n.vocab.fallback, data)
}

func (n *Narrator) bucketFor(t float64) (bucket, bool) {
	for _, b := range n.vocab.buckets {
		if b.holds(t) {
			return b, true
		}
	}
	return bucket{}, false
}

func (n *Narrator) inAny(sets []string, label string) bool {
	for _, set := range sets {
		if n.vocab.contains(set, label) {
			return true
		}
	}
	return false
}

func (n *Narrator) story(bucketName, ruleName string, tmpl *template.Template, data storyData) weather.Story {
	return weather.Story{
		Text:   render(tmpl, data),
		Bucket: bucketName,
		Rule:   ruleName,
	}
}

// render executes tmpl, falling back to a fixed sentence if the template
// fails or produces only whitespace.
func render(tmpl *template.Template, data storyData) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err == nil {
		if text := strings.TrimSpace(buf.String()); text != "" {
			return text
		}
	}
	return fmt.Sprintf("O tempo em %s hoje é %s, com temperatura máxima de %s°C.",
		data.City, data.Condition, data.TempMax)
}

// formatTemp prints the shortest decimal that round-trips: 35, 22.5.
func formatTemp(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}
