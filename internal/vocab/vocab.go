// Package vocab holds the read-only keyword tables used for entity
// extraction and task categorization. The tables are embedded at build time
// and decoded once; callers share the same instance and must not mutate it.
package vocab

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var embedded []byte

// GeneralTeam is the bucket for task descriptions that match no category.
const GeneralTeam = "general"

// Category associates a team with the keywords that pull a task toward it.
type Category struct {
	Team     string   `yaml:"team"`
	Keywords []string `yaml:"keywords"`
}

// StatusKeyword maps a phrase found in free text to a project status.
type StatusKeyword struct {
	Phrase string               `yaml:"phrase"`
	Status domain.ProjectStatus `yaml:"status"`
}

type Vocabulary struct {
	ExtractionTeams []string        `yaml:"extraction_teams"`
	DefaultTeams    []string        `yaml:"default_teams"`
	Categories      []Category      `yaml:"categories"`
	StatusKeywords  []StatusKeyword `yaml:"status_keywords"`
}

var (
	defaultOnce  sync.Once
	defaultVocab *Vocabulary
)

// Default returns the embedded vocabulary. It panics if the embedded file is
// malformed, which can only happen through a bad build.
func Default() *Vocabulary {
	defaultOnce.Do(func() {
		v, err := Parse(embedded)
		if err != nil {
			panic(fmt.Sprintf("vocab: embedded vocabulary is invalid: %v", err))
		}
		defaultVocab = v
	})
	return defaultVocab
}

// Parse decodes and normalizes a vocabulary document.
func Parse(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding vocabulary: %w", err)
	}

	if len(v.ExtractionTeams) == 0 {
		return nil, fmt.Errorf("extraction_teams must not be empty")
	}
	if len(v.Categories) == 0 {
		return nil, fmt.Errorf("categories must not be empty")
	}

	for i, team := range v.ExtractionTeams {
		team = strings.ToLower(strings.TrimSpace(team))
		if team == "" {
			return nil, fmt.Errorf("extraction_teams[%d] is empty", i)
		}
		v.ExtractionTeams[i] = team
	}
	for i, team := range v.DefaultTeams {
		v.DefaultTeams[i] = strings.ToLower(strings.TrimSpace(team))
	}

	seen := make(map[string]bool, len(v.Categories))
	for i := range v.Categories {
		c := &v.Categories[i]
		c.Team = strings.ToLower(strings.TrimSpace(c.Team))
		if c.Team == "" {
			return nil, fmt.Errorf("categories[%d] has no team", i)
		}
		if seen[c.Team] {
			return nil, fmt.Errorf("category %q is declared twice", c.Team)
		}
		seen[c.Team] = true
		for j, kw := range c.Keywords {
			c.Keywords[j] = strings.ToLower(kw)
		}
	}

	for i, sk := range v.StatusKeywords {
		if !sk.Status.Valid() {
			return nil, fmt.Errorf("status_keywords[%d]: unknown status %q", i, sk.Status)
		}
		v.StatusKeywords[i].Phrase = strings.ToLower(sk.Phrase)
	}

	return &v, nil
}

// IsExtractionTeam reports whether team is part of the extraction vocabulary.
func (v *Vocabulary) IsExtractionTeam(team string) bool {
	team = strings.ToLower(team)
	for _, t := range v.ExtractionTeams {
		if t == team {
			return true
		}
	}
	return false
}
