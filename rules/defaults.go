package rules

import (
	"regexp"

	"sentinel-bot/model"
)

// DefaultVersion identifies the built-in rule table.
const DefaultVersion = "builtin-2025.08"

type defaultRule struct {
	id       string
	category model.ViolationCategory
	pattern  string
	weight   float64
}

var defaultRules = []defaultRule{
	// Scam
	{"scam-free-nitro", model.CategoryScam, `(?i)free\s+(discord\s+)?nitro`, 0.9},
	{"scam-crypto-double", model.CategoryScam, `(?i)(double|triple)\s+your\s+(crypto|btc|bitcoin|eth|money)`, 0.9},
	{"scam-steam-gift", model.CategoryScam, `(?i)free\s+steam\s+(gift|wallet|card)`, 0.8},
	{"scam-shortlink", model.CategoryScam, `(?i)(bit\.ly|tinyurl\.com|cutt\.ly|t\.co)/\S+`, 0.6},
	{"scam-giveaway-dm", model.CategoryScam, `(?i)you\s+(have\s+)?won\s+a?\s*(giveaway|prize|airdrop)`, 0.8},

	// Phishing
	{"phish-verify-account", model.CategoryPhishing, `(?i)verify\s+your\s+(discord\s+)?account`, 0.8},
	{"phish-password", model.CategoryPhishing, `(?i)(password\s+(expired|compromised)|reset\s+your\s+password\s+(now|immediately))`, 0.8},
	{"phish-login-alert", model.CategoryPhishing, `(?i)(suspicious|unusual)\s+(login|sign.?in)\s+(activity|attempt)`, 0.7},
	{"phish-click-urgent", model.CategoryPhishing, `(?i)click\s+(here|this\s+link)\s+(now|immediately|asap)`, 0.7},
	{"phish-fake-login", model.CategoryPhishing, `(?i)(discorcl|discord-gift|dlscord|discord-app)\.\S+`, 0.9},

	// Malware
	{"malware-exe-link", model.CategoryMalware, `(?i)https?://\S+\.(exe|scr|bat|vbs)\b`, 0.9},
	{"malware-grabber", model.CategoryMalware, `(?i)(token\s+grabber|cookie\s+stealer|keylogger)`, 0.9},
	{"malware-crack", model.CategoryMalware, `(?i)(cracked|nulled)\s+(version|download|client)`, 0.7},

	// Spam
	{"spam-invite-burst", model.CategorySpam, `(?i)(discord\.gg/\S+.*){3,}`, 0.8},
	{"spam-mass-mention", model.CategorySpam, `@everyone.*@everyone|@here.*@here`, 0.7},
	{"spam-char-flood", model.CategorySpam, `(?i)([!?$.~^]{10,}|(ha|he|lo|xd){10,})`, 0.5},
	{"spam-join-my-server", model.CategorySpam, `(?i)join\s+my\s+(server|discord)\s+.*discord\.gg`, 0.6},

	// Harassment
	{"harass-kys", model.CategoryHarassment, `(?i)\b(kys|kill\s+your\s?self)\b`, 0.9},
	{"harass-threat", model.CategoryHarassment, `(?i)i\s+(will|'?ll)\s+(find|hunt|hurt)\s+you`, 0.8},
	{"harass-dox", model.CategoryHarassment, `(?i)(dox+|leak)\s+(your|his|her|their)\s+(address|ip|info)`, 0.8},

	// Raid
	{"raid-call", model.CategoryRaid, `(?i)raid\s+(this|the|their)\s+(server|channel)`, 0.8},
	{"raid-join-coord", model.CategoryRaid, `(?i)everyone\s+(join|spam)\s+.*\s+at\s+the\s+same\s+time`, 0.7},

	// Toxic
	{"toxic-insult", model.CategoryToxic, `(?i)\byou('?re|\s+are)\s+(a\s+)?(worthless|pathetic|braindead)\b`, 0.6},
	{"toxic-profane-directed", model.CategoryToxic, `(?i)\b(f+u+c+k+|screw)\s+(you|u|off)\b`, 0.5},

	// NSFW
	{"nsfw-explicit", model.CategoryNSFW, `(?i)\b(porn|nudes|onlyfans\s+leak)\b`, 0.7},

	// Impersonation
	{"imp-staff", model.CategoryImpersonation, `(?i)i\s+am\s+(an?\s+)?(official\s+)?(discord\s+)?(staff|moderator|admin)\b`, 0.7},
	{"imp-system", model.CategoryImpersonation, `(?i)official\s+(discord\s+)?(system|security)\s+(message|notice|alert)`, 0.8},
}

// DefaultSet compiles and returns the built-in rule table.
func DefaultSet() *Set {
	set := &Set{
		version:     DefaultVersion,
		adjustments: make(map[string]float64),
	}
	for _, d := range defaultRules {
		set.rules = append(set.rules, Rule{
			ID:       d.id,
			Category: d.category,
			Pattern:  regexp.MustCompile(d.pattern),
			Weight:   d.weight,
		})
	}
	return set
}
