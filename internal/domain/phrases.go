package domain

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

//go:embed phrases.yaml
var defaultPhrasesYAML []byte

// Phrases holds the text tables that drive marker detection and corroboration
// bonuses. Every entry is lower-case.
type Phrases struct {
	Markers struct {
		TornadoEmergency []string `yaml:"tornado_emergency"`
		PDS              []string `yaml:"pds"`
	} `yaml:"markers"`
	Corroboration struct {
		Confirmed []string `yaml:"confirmed"`
		Debris    []string `yaml:"debris"`
		Wedge     []string `yaml:"wedge"`
	} `yaml:"corroboration"`
	Cities []string `yaml:"cities"`

	cityRe *regexp.Regexp
}

// activePhrases holds the table set used by scoring. Tests and PHRASES_FILE
// swap it via SetPhrases.
var activePhrases atomic.Pointer[Phrases]

func init() {
	activePhrases.Store(mustDefaultPhrases())
}

// SetPhrases replaces the active phrase tables. Pass nil to restore the
// embedded defaults. Safe to call while ticks are running; a tick that
// already loaded the old tables finishes with them.
func SetPhrases(p *Phrases) {
	if p == nil {
		p = mustDefaultPhrases()
	}
	activePhrases.Store(p)
}

func currentPhrases() *Phrases {
	return activePhrases.Load()
}

// ParsePhrases decodes a YAML phrase document and normalizes it.
func ParsePhrases(data []byte) (*Phrases, error) {
	var p Phrases
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse phrases: %w", err)
	}
	if len(p.Markers.TornadoEmergency) == 0 || len(p.Markers.PDS) == 0 {
		return nil, errors.New("parse phrases: markers.tornado_emergency and markers.pds are required")
	}

	p.Markers.TornadoEmergency = lowerAll(p.Markers.TornadoEmergency)
	p.Markers.PDS = lowerAll(p.Markers.PDS)
	p.Corroboration.Confirmed = lowerAll(p.Corroboration.Confirmed)
	p.Corroboration.Debris = lowerAll(p.Corroboration.Debris)
	p.Corroboration.Wedge = lowerAll(p.Corroboration.Wedge)
	p.Cities = lowerAll(p.Cities)
	p.cityRe = compileWordList(p.Cities)
	return &p, nil
}

// LoadPhrases reads a phrase document from disk.
func LoadPhrases(path string) (*Phrases, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read phrases file: %w", err)
	}
	return ParsePhrases(data)
}

func mustDefaultPhrases() *Phrases {
	p, err := ParsePhrases(defaultPhrasesYAML)
	if err != nil {
		panic(err)
	}
	return p
}

// mentionsCity reports whether lower-cased text names any listed city as a
// whole word.
func (p *Phrases) mentionsCity(text string) bool {
	if p.cityRe == nil {
		return false
	}
	return p.cityRe.MatchString(text)
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func compileWordList(words []string) *regexp.Regexp {
	if len(words) == 0 {
		return nil
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
