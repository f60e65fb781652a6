package decision

import "sentinel-bot/model"

// baselineTable maps (category, severity) to the unescalated enforcement
// action. Zero-tolerance categories hit Timeout even at Low and Ban from
// Medium up; spam and harassment scale gradually.
var baselineTable = map[model.ViolationCategory]map[model.Severity]model.EnforcementAction{
	model.CategoryScam: {
		model.SeverityLow:       model.ActionTimeout,
		model.SeverityMedium:    model.ActionBan,
		model.SeverityHigh:      model.ActionBan,
		model.SeverityCritical:  model.ActionBan,
		model.SeverityEmergency: model.ActionBan,
	},
	model.CategoryMalware: {
		model.SeverityLow:       model.ActionTimeout,
		model.SeverityMedium:    model.ActionBan,
		model.SeverityHigh:      model.ActionBan,
		model.SeverityCritical:  model.ActionBan,
		model.SeverityEmergency: model.ActionBan,
	},
	model.CategoryPhishing: {
		model.SeverityLow:       model.ActionTimeout,
		model.SeverityMedium:    model.ActionBan,
		model.SeverityHigh:      model.ActionBan,
		model.SeverityCritical:  model.ActionBan,
		model.SeverityEmergency: model.ActionBan,
	},
	model.CategorySpam: {
		model.SeverityLow:       model.ActionWarn,
		model.SeverityMedium:    model.ActionDelete,
		model.SeverityHigh:      model.ActionTimeout,
		model.SeverityCritical:  model.ActionBan,
		model.SeverityEmergency: model.ActionBan,
	},
	model.CategoryHarassment: {
		model.SeverityLow:       model.ActionWarn,
		model.SeverityMedium:    model.ActionTimeout,
		model.SeverityHigh:      model.ActionTimeout,
		model.SeverityCritical:  model.ActionBan,
		model.SeverityEmergency: model.ActionBan,
	},
	model.CategoryRaid: {
		model.SeverityLow:       model.ActionTimeout,
		model.SeverityMedium:    model.ActionTimeout,
		model.SeverityHigh:      model.ActionQuarantine,
		model.SeverityCritical:  model.ActionBan,
		model.SeverityEmergency: model.ActionBan,
	},
	model.CategoryToxic: {
		model.SeverityLow:       model.ActionWarn,
		model.SeverityMedium:    model.ActionDelete,
		model.SeverityHigh:      model.ActionTimeout,
		model.SeverityCritical:  model.ActionQuarantine,
		model.SeverityEmergency: model.ActionBan,
	},
	model.CategoryNSFW: {
		model.SeverityLow:       model.ActionDelete,
		model.SeverityMedium:    model.ActionDelete,
		model.SeverityHigh:      model.ActionTimeout,
		model.SeverityCritical:  model.ActionQuarantine,
		model.SeverityEmergency: model.ActionBan,
	},
	model.CategoryImpersonation: {
		model.SeverityLow:       model.ActionWarn,
		model.SeverityMedium:    model.ActionTimeout,
		model.SeverityHigh:      model.ActionQuarantine,
		model.SeverityCritical:  model.ActionBan,
		model.SeverityEmergency: model.ActionBan,
	},
}

// Baseline returns the decision-matrix action for a category and severity.
// Unknown pairs default to Warn so a misconfigured table fails toward
// leniency rather than punitive error.
func Baseline(category model.ViolationCategory, severity model.Severity) model.EnforcementAction {
	bySeverity, ok := baselineTable[category]
	if !ok {
		return model.ActionWarn
	}
	action, ok := bySeverity[severity]
	if !ok {
		return model.ActionWarn
	}
	return action
}
