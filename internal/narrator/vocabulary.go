package narrator

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabulary []byte

var (
	errNoVersion   = errors.New("vocabulary version is required")
	errNoBuckets   = errors.New("vocabulary defines no temperature buckets")
	errNoFallback  = errors.New("vocabulary fallback story is required")
	errUnknownSet  = errors.New("unknown condition set")
	errEmptyStory  = errors.New("story template renders empty text")
	errNoBounds    = errors.New("bucket has no temperature bounds")
	errBucketNoDef = errors.New("bucket has no default story")
)

// vocabularyFile mirrors the YAML layout.
type vocabularyFile struct {
	Version    string              `yaml:"version"`
	Sets       map[string][]string `yaml:"sets"`
	Buckets    []bucketFile        `yaml:"buckets"`
	Conditions []ruleFile          `yaml:"conditions"`
	Fallback   string              `yaml:"fallback"`
}

type bucketFile struct {
	Name    string     `yaml:"name"`
	Above   *float64   `yaml:"above"`
	From    *float64   `yaml:"from"`
	To      *float64   `yaml:"to"`
	Below   *float64   `yaml:"below"`
	Rules   []ruleFile `yaml:"rules"`
	YieldTo []string   `yaml:"yield_to"`
	Default string     `yaml:"default"`
}

type ruleFile struct {
	When  string `yaml:"when"`
	Story string `yaml:"story"`
}

// Vocabulary is a compiled, read-only decision table: condition membership
// sets, temperature buckets with their rules, condition-only rules and the
// fallback story. It is safe for concurrent use.
type Vocabulary struct {
	version    string
	sets       map[string]map[string]struct{}
	buckets    []bucket
	conditions []rule
	fallback   *template.Template
}

type bucket struct {
	name    string
	above   *float64 // exclusive
	from    *float64 // inclusive
	to      *float64 // inclusive
	below   *float64 // exclusive
	rules   []rule
	yieldTo []string
	def     *template.Template
}

// holds reports whether t lies inside every configured bound. NaN never does.
func (b bucket) holds(t float64) bool {
	if b.above != nil && !(t > *b.above) {
		return false
	}
	if b.from != nil && !(t >= *b.from) {
		return false
	}
	if b.to != nil && !(t <= *b.to) {
		return false
	}
	if b.below != nil && !(t < *b.below) {
		return false
	}
	return true
}

type rule struct {
	name string
	set  string
	tmpl *template.Template
}

// DefaultVocabulary returns the vocabulary embedded in the binary.
func DefaultVocabulary() (*Vocabulary, error) {
	return LoadVocabulary(bytes.NewReader(defaultVocabulary))
}

// LoadVocabularyFile reads a vocabulary from a YAML file on disk.
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary %s: %w", path, err)
	}
	defer f.Close()

	return LoadVocabulary(f)
}

// LoadVocabulary parses and validates a YAML vocabulary. Every rule must
// reference a declared set and every template must render non-empty text.
func LoadVocabulary(r io.Reader) (*Vocabulary, error) {
	var vf vocabularyFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&vf); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}

	if strings.TrimSpace(vf.Version) == "" {
		return nil, errNoVersion
	}
	if len(vf.Buckets) == 0 {
		return nil, errNoBuckets
	}
	if strings.TrimSpace(vf.Fallback) == "" {
		return nil, errNoFallback
	}

	v := &Vocabulary{
		version: vf.Version,
		sets:    make(map[string]map[string]struct{}, len(vf.Sets)),
	}

	for name, labels := range vf.Sets {
		members := make(map[string]struct{}, len(labels))
		for _, l := range labels {
			members[normalizeLabel(l)] = struct{}{}
		}
		v.sets[name] = members
	}

	for _, bf := range vf.Buckets {
		b, err := v.compileBucket(bf)
		if err != nil {
			return nil, fmt.Errorf("bucket %q: %w", bf.Name, err)
		}
		v.buckets = append(v.buckets, b)
	}

	for _, rf := range vf.Conditions {
		r, err := v.compileRule("condition", rf)
		if err != nil {
			return nil, fmt.Errorf("conditions: %w", err)
		}
		v.conditions = append(v.conditions, r)
	}

	fallback, err := compileStory("fallback", vf.Fallback)
	if err != nil {
		return nil, err
	}
	v.fallback = fallback

	return v, nil
}

func (v *Vocabulary) compileBucket(bf bucketFile) (bucket, error) {
	if bf.Name == "" {
		return bucket{}, errors.New("bucket name is required")
	}
	if bf.Above == nil && bf.From == nil && bf.To == nil && bf.Below == nil {
		return bucket{}, errNoBounds
	}
	if strings.TrimSpace(bf.Default) == "" {
		return bucket{}, errBucketNoDef
	}

	b := bucket{
		name:  bf.Name,
		above: bf.Above,
		from:  bf.From,
		to:    bf.To,
		below: bf.Below,
	}

	for _, rf := range bf.Rules {
		r, err := v.compileRule(bf.Name, rf)
		if err != nil {
			return bucket{}, err
		}
		b.rules = append(b.rules, r)
	}

	for _, set := range bf.YieldTo {
		if _, ok := v.sets[set]; !ok {
			return bucket{}, fmt.Errorf("yield_to %q: %w", set, errUnknownSet)
		}
	}
	b.yieldTo = bf.YieldTo

	def, err := compileStory(bf.Name+"/default", bf.Default)
	if err != nil {
		return bucket{}, err
	}
	b.def = def

	return b, nil
}

func (v *Vocabulary) compileRule(prefix string, rf ruleFile) (rule, error) {
	if _, ok := v.sets[rf.When]; !ok {
		return rule{}, fmt.Errorf("rule %q: %w", rf.When, errUnknownSet)
	}
	name := prefix + "/" + rf.When
	tmpl, err := compileStory(name, rf.Story)
	if err != nil {
		return rule{}, err
	}
	return rule{name: name, set: rf.When, tmpl: tmpl}, nil
}

// compileStory parses a template and renders it once against a sample so
// broken templates fail at load time rather than per row.
func compileStory(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse story %s: %w", name, err)
	}

	var buf bytes.Buffer
	sample := storyData{City: "Lisboa", Condition: "Chuva", TempMax: "20"}
	if err := tmpl.Execute(&buf, sample); err != nil {
		return nil, fmt.Errorf("render story %s: %w", name, err)
	}
	if strings.TrimSpace(buf.String()) == "" {
		return nil, fmt.Errorf("story %s: %w", name, errEmptyStory)
	}
	return tmpl, nil
}

// Version identifies the vocabulary revision.
func (v *Vocabulary) Version() string {
	return v.version
}

// Sets returns the names of all membership sets, sorted.
func (v *Vocabulary) Sets() []string {
	names := make([]string, 0, len(v.sets))
	for name := range v.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Members returns the labels of a set, sorted. Unknown sets yield nil.
func (v *Vocabulary) Members(set string) []string {
	members, ok := v.sets[set]
	if !ok {
		return nil
	}
	labels := make([]string, 0, len(members))
	for l := range members {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

func (v *Vocabulary) contains(set, normalized string) bool {
	_, ok := v.sets[set][normalized]
	return ok
}

// Classify lists every set the label belongs to, sorted.
func (v *Vocabulary) Classify(label string) []string {
	normalized := normalizeLabel(label)
	var out []string
	for _, name := range v.Sets() {
		if v.contains(name, normalized) {
			out = append(out, name)
		}
	}
	return out
}

// normalizeLabel makes visually identical labels compare equal: composed
// and decomposed accents, surrounding whitespace.
func normalizeLabel(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
