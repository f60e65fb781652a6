package rules

import (
	"fmt"
	"regexp"
	"sync"

	"sentinel-bot/model"

	"github.com/spf13/viper"
)

// Rule is a single compiled detection pattern.
type Rule struct {
	ID       string
	Category model.ViolationCategory
	Pattern  *regexp.Regexp
	Weight   float64
}

// ruleDef is the on-disk shape of a rule before compilation.
type ruleDef struct {
	ID       string  `mapstructure:"id"`
	Category string  `mapstructure:"category"`
	Pattern  string  `mapstructure:"pattern"`
	Weight   float64 `mapstructure:"weight"`
}

// Set is a versioned, immutable collection of compiled rules grouped by
// category. Weight adjustments from moderator feedback are layered on top
// without touching the base table.
type Set struct {
	version string
	rules   []Rule

	mu          sync.RWMutex
	adjustments map[string]float64
}

// Version returns the rule-set version string.
func (s *Set) Version() string {
	return s.version
}

// Len returns the number of rules in the set.
func (s *Set) Len() int {
	return len(s.rules)
}

// Match runs every rule against content and returns one RuleMatch per hit.
func (s *Set) Match(content string) []model.RuleMatch {
	var matches []model.RuleMatch
	for _, r := range s.rules {
		if r.Pattern.MatchString(content) {
			matches = append(matches, model.RuleMatch{
				Category:  r.Category,
				PatternID: r.ID,
				Weight:    s.effectiveWeight(r.ID, r.Weight),
			})
		}
	}
	return matches
}

// AdjustWeight shifts a pattern's effective weight by delta. Used by the
// feedback loop when a caller opts into applying verdict adjustments.
func (s *Set) AdjustWeight(patternID string, delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adjustments[patternID] += delta
}

func (s *Set) effectiveWeight(patternID string, base float64) float64 {
	s.mu.RLock()
	delta := s.adjustments[patternID]
	s.mu.RUnlock()

	w := base + delta
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}

// Load reads a rule file (YAML or JSON) and compiles it into a Set. An empty
// path returns the built-in default set.
func Load(path string) (*Set, error) {
	if path == "" {
		return DefaultSet(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}

	var defs []ruleDef
	if err := v.UnmarshalKey("rules", &defs); err != nil {
		return nil, fmt.Errorf("failed to parse rule file %s: %w", path, err)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("rule file %s contains no rules", path)
	}

	set := &Set{
		version:     v.GetString("version"),
		adjustments: make(map[string]float64),
	}
	for _, def := range defs {
		re, err := regexp.Compile(def.Pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %s: %w", def.ID, err)
		}
		set.rules = append(set.rules, Rule{
			ID:       def.ID,
			Category: model.ViolationCategory(def.Category),
			Pattern:  re,
			Weight:   def.Weight,
		})
	}
	return set, nil
}
