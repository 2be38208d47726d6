package classify

import "strings"

// Categories lists the six fixed event categories.
var Categories = []string{
	"Armed Conflict",
	"Civil Unrest",
	"Diplomacy / Sanctions",
	"Economic Disruption",
	"Infrastructure / Energy",
	"Crime / Terror",
}

// DefaultCategory is returned when no keyword matches at all.
const DefaultCategory = "Civil Unrest"

type keywordRule struct {
	category string
	keywords []string
}

// keywordRules is deliberately an ordered slice, not a map: when two
// categories tie on hit count the earlier rule wins, and that tie-break must
// stay deterministic.
var keywordRules = []keywordRule{
	{"Armed Conflict", []string{
		"military", "airstrike", "bombing", "troops", "invasion", "shelling",
		"war", "warfare", "artillery", "missile strike", "armed forces",
		"combat", "offensive", "drone strike", "battlefield", "ceasefire",
	}},
	{"Crime / Terror", []string{
		"terrorism", "terrorist", "attack", "assassination", "kidnapping",
		"hostage", "shooting", "explosion", "suicide bomb", "extremist",
		"militant", "insurgent", "cartel", "gang", "organized crime",
	}},
	{"Civil Unrest", []string{
		"protest", "demonstration", "riot", "unrest", "strike", "uprising",
		"rally", "march", "civil disobedience", "crackdown", "dissent",
		"opposition", "coup", "revolution", "martial law",
	}},
	{"Diplomacy / Sanctions", []string{
		"sanctions", "diplomacy", "diplomatic", "treaty", "summit",
		"negotiations", "embargo", "united nations", "bilateral", "alliance",
		"peace talks", "foreign minister", "ambassador", "resolution",
	}},
	{"Economic Disruption", []string{
		"economic crisis", "inflation", "recession", "trade war", "tariff",
		"supply chain", "currency", "debt crisis", "bankruptcy", "default",
		"market crash", "stock market", "commodity", "oil price",
	}},
	{"Infrastructure / Energy", []string{
		"infrastructure", "pipeline", "power grid", "nuclear plant",
		"energy crisis", "blackout", "cyberattack", "dam", "refinery",
		"oil facility", "gas pipeline", "power outage", "sabotage",
	}},
}

// ClassifyByKeywords is the deterministic fallback: count keyword hits per
// category, best count wins (first rule wins ties), confidence is
// min(0.7, hits/5). Zero hits return the default category at 0.1.
func ClassifyByKeywords(text string) (string, float64) {
	lower := strings.ToLower(text)

	best := ""
	bestCount := 0
	for _, rule := range keywordRules {
		count := 0
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				count++
			}
		}
		if count > bestCount {
			best = rule.category
			bestCount = count
		}
	}
	if bestCount == 0 {
		return DefaultCategory, 0.1
	}
	confidence := float64(bestCount) / 5.0
	if confidence > 0.7 {
		confidence = 0.7
	}
	return best, confidence
}
