package learning

import (
	"fmt"
	"log"
	"strings"
	"time"

	"sentinel-bot/model"
	"sentinel-bot/utils/database/audit"

	"github.com/jmoiron/sqlx"
)

const (
	// similarityWindow bounds how far back the similarity search looks.
	similarityWindow = 30 * 24 * time.Hour
	// similarityThreshold is the minimum Jaccard similarity for an event
	// outside the judged category to count as a similar incident.
	similarityThreshold = 0.3

	confirmAdjustment = 0.05
	denyAdjustment    = -0.10
)

// SimilarIncident is a past event related to the judged one, by sharing its
// category or by closely matching its wording.
type SimilarIncident struct {
	Event      model.ViolationEvent
	Similarity float64
}

// Outcome is what a moderator verdict produced: the updated event, the
// related incidents found, and the advisory confidence adjustment. The
// adjustment is guidance for rule tuning, not an automatic weight change.
type Outcome struct {
	Event                model.ViolationEvent
	Confirmed            bool
	SimilarIncidents     []SimilarIncident
	ConfidenceAdjustment float64
	SeverityAdjustment   *int
}

// Loop turns moderator confirm/deny verdicts into recorded ground truth and
// advisory scoring adjustments.
type Loop struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewLoop creates a feedback loop over the audit store.
func NewLoop(db *sqlx.DB) *Loop {
	return &Loop{db: db, now: time.Now}
}

// SubmitVerdict records a moderator's confirm/deny judgment for the event
// with the given content hash. The verdict is always written before the
// outcome is returned; the confidence adjustment rides along as advisory
// metadata.
func (l *Loop) SubmitVerdict(hash string, confirmed bool, moderatorID string, severityAdjustment *int) (*Outcome, error) {
	event, err := audit.GetEventByHash(l.db, hash)
	if err != nil {
		return nil, err
	}

	similar, err := l.findSimilarIncidents(event)
	if err != nil {
		return nil, fmt.Errorf("failed to find similar incidents for hash %s: %w", hash, err)
	}

	if err := audit.SetModeratorVerdict(l.db, hash, confirmed); err != nil {
		return nil, err
	}

	adjustment := denyAdjustment
	if confirmed {
		adjustment = confirmAdjustment
	}

	if confirmed {
		event.ModeratorConfirmed = model.VerdictConfirmed
	} else {
		event.ModeratorConfirmed = model.VerdictDenied
	}

	outcome := &Outcome{
		Event:                *event,
		Confirmed:            confirmed,
		SimilarIncidents:     similar,
		ConfidenceAdjustment: adjustment,
		SeverityAdjustment:   severityAdjustment,
	}

	verdict := "denied"
	if confirmed {
		verdict = "confirmed"
	}
	log.Printf("Moderator %s %s event %s (%d similar incidents, adjustment %+.2f)",
		moderatorID, verdict, hash, len(similar), adjustment)

	return outcome, nil
}

// findSimilarIncidents relates the judged event to others inside the
// trailing window. Sharing the category is enough on its own; events from
// other categories qualify when their word-set Jaccard similarity clears the
// threshold. Every incident carries its similarity score so moderators can
// tell near-duplicates from loosely related cases.
func (l *Loop) findSimilarIncidents(event *model.ViolationEvent) ([]SimilarIncident, error) {
	since := l.now().Add(-similarityWindow)
	candidates, err := audit.GetAllEvents(l.db, since)
	if err != nil {
		return nil, err
	}

	baseWords := wordSet(event.OriginalContent)
	var similar []SimilarIncident
	for _, candidate := range candidates {
		if candidate.ContentHash == event.ContentHash {
			continue
		}
		sim := jaccard(baseWords, wordSet(candidate.OriginalContent))
		if candidate.Category == event.Category || sim >= similarityThreshold {
			similar = append(similar, SimilarIncident{Event: candidate, Similarity: sim})
		}
	}
	return similar, nil
}

// wordSet lowercases content and splits it into a set of words.
func wordSet(content string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(content)) {
		set[w] = struct{}{}
	}
	return set
}

// jaccard computes intersection-over-union of two word sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
