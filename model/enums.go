package model

// ViolationCategory classifies abusive content. The set is closed; new
// categories require a rule-set redeploy.
type ViolationCategory string

const (
	CategoryScam          ViolationCategory = "scam"
	CategorySpam          ViolationCategory = "spam"
	CategoryMalware       ViolationCategory = "malware"
	CategoryHarassment    ViolationCategory = "harassment"
	CategoryPhishing      ViolationCategory = "phishing"
	CategoryRaid          ViolationCategory = "raid"
	CategoryToxic         ViolationCategory = "toxic"
	CategoryNSFW          ViolationCategory = "nsfw"
	CategoryImpersonation ViolationCategory = "impersonation"
)

// AllCategories lists every known violation category.
var AllCategories = []ViolationCategory{
	CategoryScam, CategorySpam, CategoryMalware, CategoryHarassment,
	CategoryPhishing, CategoryRaid, CategoryToxic, CategoryNSFW,
	CategoryImpersonation,
}

// ZeroTolerance reports whether the category bypasses progressive
// escalation and goes straight to the harshest action.
func (c ViolationCategory) ZeroTolerance() bool {
	switch c {
	case CategoryScam, CategoryMalware, CategoryPhishing:
		return true
	}
	return false
}

// Severity is the ordinal risk tier derived from score and match breadth.
type Severity int

const (
	SeverityNone Severity = iota // no violation detected
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
	SeverityEmergency
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	case SeverityEmergency:
		return "emergency"
	}
	return "none"
}

// EnforcementAction is what the engine does about a violation. The order
// matters: a progressive override is only applied when it is strictly
// stricter than the baseline.
type EnforcementAction int

const (
	ActionNone EnforcementAction = iota
	ActionWarn
	ActionDelete
	ActionTimeout
	ActionQuarantine
	ActionBan
	ActionEscalate
)

func (a EnforcementAction) String() string {
	switch a {
	case ActionWarn:
		return "warn"
	case ActionDelete:
		return "delete"
	case ActionTimeout:
		return "timeout"
	case ActionQuarantine:
		return "quarantine"
	case ActionBan:
		return "ban"
	case ActionEscalate:
		return "escalate"
	}
	return "none"
}

// StricterThan reports whether a outranks b in the enforcement ordering.
func (a EnforcementAction) StricterThan(b EnforcementAction) bool {
	return a > b
}
