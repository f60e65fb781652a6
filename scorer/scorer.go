package scorer

import (
	"fmt"

	"sentinel-bot/decision"
	"sentinel-bot/model"
	"sentinel-bot/rules"
)

// confidenceStep is how much each matching pattern adds to its category's
// confidence.
const confidenceStep = 0.25

// Scorer combines rule matches with user-context risk factors into a bounded
// risk score. It holds no mutable state beyond the shared rule set, so one
// instance is safe for concurrent use.
type Scorer struct {
	rules *rules.Set
}

// New creates a scorer over the given rule set.
func New(set *rules.Set) *Scorer {
	return &Scorer{rules: set}
}

// Rules exposes the underlying rule set, mainly so the feedback loop can
// target weight adjustments at it.
func (s *Scorer) Rules() *rules.Set {
	return s.rules
}

// Analyze classifies content against the rule set and the author's risk
// context. It is a pure function of its inputs; no match means a clean
// result with SeverityNone and a Warn recommendation.
func (s *Scorer) Analyze(content string, ctx model.UserRiskContext) (*model.AnalysisResult, error) {
	if content == "" {
		return nil, fmt.Errorf("cannot analyze empty content")
	}

	matches := s.rules.Match(content)
	if ctx.DuplicateSightings >= 3 {
		matches = append(matches, model.RuleMatch{
			Category:  model.CategorySpam,
			PatternID: "spam-duplicate-content",
			Weight:    0.6,
		})
	}

	confidence := categoryConfidence(matches)
	score := riskScore(ctx, len(confidence))

	result := &model.AnalysisResult{
		Matches:            matches,
		CategoryConfidence: confidence,
		RiskScore:          score,
		RecommendedAction:  model.ActionWarn,
	}
	if len(matches) == 0 {
		return result, nil
	}

	result.Severity = deriveSeverity(score, confidence)
	result.Confidence = blendConfidence(score, confidence)
	result.RecommendedAction = decision.Baseline(result.TopCategory(), result.Severity)
	return result, nil
}

// categoryConfidence accumulates a fixed step per matching pattern inside a
// category, capped at 1.0.
func categoryConfidence(matches []model.RuleMatch) map[model.ViolationCategory]float64 {
	confidence := make(map[model.ViolationCategory]float64)
	for _, m := range matches {
		c := confidence[m.Category] + confidenceStep
		if c > 1.0 {
			c = 1.0
		}
		confidence[m.Category] = c
	}
	return confidence
}

// riskScore sums the context risk factors and clamps to [0,1].
func riskScore(ctx model.UserRiskContext, matchedCategories int) float64 {
	var score float64

	switch {
	case ctx.AccountAgeDays < 1:
		score += 0.4
	case ctx.AccountAgeDays < 7:
		score += 0.2
	}
	if !ctx.HasAvatar {
		score += 0.1
	}
	if ctx.RoleCount == 0 {
		score += 0.1
	}

	prior := float64(ctx.PriorViolationCount) * 0.3
	if prior > 0.9 {
		prior = 0.9
	}
	score += prior

	switch {
	case ctx.RecentViolationCount24h >= 3:
		score += 0.8
	case ctx.RecentViolationCount24h == 2:
		score += 0.6
	case ctx.RecentViolationCount24h == 1:
		score += 0.4
	}

	if ctx.IsDirectMessage {
		score += 0.2
	}

	categoryBonus := float64(matchedCategories) * 0.3
	if categoryBonus > 0.7 {
		categoryBonus = 0.7
	}
	score += categoryBonus

	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	return score
}

// deriveSeverity applies the fixed thresholds on score, match breadth and
// per-category confidence.
func deriveSeverity(score float64, confidence map[model.ViolationCategory]float64) model.Severity {
	maxConf := 0.0
	for _, c := range confidence {
		if c > maxConf {
			maxConf = c
		}
	}

	switch {
	case score > 0.8 || len(confidence) > 2:
		return model.SeverityCritical
	case score > 0.6 || maxConf > 0.7:
		return model.SeverityHigh
	case score > 0.4 || maxConf > 0.5:
		return model.SeverityMedium
	}
	return model.SeverityLow
}

// blendConfidence averages matched-category confidence with the risk score,
// capped at 0.95 so the engine never asserts certainty.
func blendConfidence(score float64, confidence map[model.ViolationCategory]float64) float64 {
	if len(confidence) == 0 {
		return 0
	}
	var sum float64
	for _, c := range confidence {
		sum += c
	}
	avg := sum / float64(len(confidence))

	blended := (avg + score) / 2
	if blended > 0.95 {
		blended = 0.95
	}
	return blended
}
