package scorer

import (
	"testing"

	"sentinel-bot/model"
	"sentinel-bot/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScorer() *Scorer {
	return New(rules.DefaultSet())
}

func establishedContext() model.UserRiskContext {
	return model.UserRiskContext{
		AccountAgeDays: 365,
		HasAvatar:      true,
		RoleCount:      3,
	}
}

func TestAnalyzeCleanContent(t *testing.T) {
	s := newTestScorer()

	result, err := s.Analyze("what a lovely afternoon for a walk", establishedContext())
	require.NoError(t, err)
	assert.True(t, result.Clean())
	assert.Equal(t, model.SeverityNone, result.Severity)
	assert.Equal(t, model.ActionWarn, result.RecommendedAction)
}

func TestAnalyzeEmptyContent(t *testing.T) {
	s := newTestScorer()
	_, err := s.Analyze("", establishedContext())
	assert.Error(t, err)
}

func TestAnalyzeScamFromNewAccount(t *testing.T) {
	s := newTestScorer()
	ctx := model.UserRiskContext{AccountAgeDays: 0, HasAvatar: false, RoleCount: 0}

	result, err := s.Analyze("FREE DISCORD NITRO bit.ly/xyz", ctx)
	require.NoError(t, err)
	require.False(t, result.Clean())

	assert.Equal(t, model.CategoryScam, result.TopCategory())
	assert.Greater(t, result.RiskScore, 0.8)
	assert.Equal(t, model.SeverityCritical, result.Severity)
	assert.Equal(t, model.ActionBan, result.RecommendedAction)
}

func TestRecentViolationsRaiseScore(t *testing.T) {
	s := newTestScorer()

	base := establishedContext()
	repeat := base
	repeat.RecentViolationCount24h = 3

	quiet, err := s.Analyze("free discord nitro", base)
	require.NoError(t, err)
	loud, err := s.Analyze("free discord nitro", repeat)
	require.NoError(t, err)

	// The +0.8 recent-violation bonus must show up in full unless clamped.
	assert.GreaterOrEqual(t, loud.RiskScore, quiet.RiskScore)
	if loud.RiskScore < 1.0 {
		assert.InDelta(t, 0.8, loud.RiskScore-quiet.RiskScore, 1e-9)
	}
}

func TestPriorViolationsCapped(t *testing.T) {
	s := newTestScorer()

	ctx := establishedContext()
	ctx.PriorViolationCount = 10

	result, err := s.Analyze("free discord nitro", ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, result.RiskScore, 1.0)
}

func TestCategoryConfidenceAccumulates(t *testing.T) {
	s := newTestScorer()

	// Two scam patterns in one message: 2 * 0.25.
	result, err := s.Analyze("free discord nitro and you won a giveaway", establishedContext())
	require.NoError(t, err)
	assert.InDelta(t, 0.5, result.CategoryConfidence[model.CategoryScam], 1e-9)
}

func TestMultiCategoryCritical(t *testing.T) {
	s := newTestScorer()

	content := "free discord nitro, verify your account, download the token grabber"
	result, err := s.Analyze(content, establishedContext())
	require.NoError(t, err)

	assert.Greater(t, len(result.CategoryConfidence), 2)
	assert.Equal(t, model.SeverityCritical, result.Severity)
}

func TestDuplicateSightingsAddSpamSignal(t *testing.T) {
	s := newTestScorer()

	ctx := establishedContext()
	ctx.DuplicateSightings = 3

	result, err := s.Analyze("check out this totally normal text", ctx)
	require.NoError(t, err)
	require.False(t, result.Clean())
	assert.Equal(t, model.CategorySpam, result.TopCategory())
}

func TestConfidenceNeverCertain(t *testing.T) {
	s := newTestScorer()

	ctx := model.UserRiskContext{
		AccountAgeDays:          0,
		PriorViolationCount:     10,
		RecentViolationCount24h: 5,
		IsDirectMessage:         true,
	}
	content := "free discord nitro verify your account token grabber kys raid the server porn"
	result, err := s.Analyze(content, ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, result.Confidence, 0.95)
	assert.LessOrEqual(t, result.RiskScore, 1.0)
}

func TestDirectMessageBonus(t *testing.T) {
	s := newTestScorer()

	public := establishedContext()
	dm := public
	dm.IsDirectMessage = true

	pubResult, err := s.Analyze("free discord nitro", public)
	require.NoError(t, err)
	dmResult, err := s.Analyze("free discord nitro", dm)
	require.NoError(t, err)

	assert.InDelta(t, 0.2, dmResult.RiskScore-pubResult.RiskScore, 1e-9)
}
