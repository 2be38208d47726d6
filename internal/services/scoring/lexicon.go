package scoring

// Category base weights, normalized 0-1. Unknown categories fall back to 0.3.
var categoryWeights = map[string]float64{
	"Armed Conflict":          1.0,
	"Crime / Terror":          0.85,
	"Civil Unrest":            0.65,
	"Infrastructure / Energy": 0.60,
	"Economic Disruption":     0.50,
	"Diplomacy / Sanctions":   0.35,
}

// Crisis keyword lexicon with intensity weights. Phrases are matched as
// lowercase substrings so multi-word terms count too.
var crisisKeywords = map[string]float64{
	// extreme severity
	"nuclear": 3.0, "invasion": 3.0, "genocide": 3.0, "massacre": 3.0,
	"chemical weapons": 3.0, "biological weapon": 3.0, "ethnic cleansing": 3.0,
	"world war": 3.0, "war crimes": 3.0, "mass grave": 3.0,
	// high severity
	"war": 2.0, "airstrike": 2.0, "bombing": 2.0, "missile": 2.0,
	"terrorism": 2.0, "hostage": 2.0, "assassination": 2.0, "casualties": 2.0,
	"killed": 2.0, "deaths": 2.0, "explosion": 2.0, "suicide bomb": 2.0,
	"mass shooting": 2.0, "famine": 2.0, "pandemic": 2.0, "catastrophe": 2.0,
	"artillery": 2.0, "shelling": 2.0, "ballistic": 2.0, "drone strike": 2.0,
	"occupation": 2.0, "siege": 2.0, "execution": 2.0, "torture": 2.0,
	"beheading": 2.0, "proxy war": 2.0, "civil war": 2.0, "ethnic conflict": 2.0,
	// medium severity
	"attack": 1.5, "conflict": 1.5, "crisis": 1.5, "threat": 1.5,
	"sanctions": 1.5, "military": 1.5, "troops": 1.5, "combat": 1.5,
	"insurgent": 1.5, "militant": 1.5, "extremist": 1.5, "violence": 1.5,
	"coup": 1.5, "martial law": 1.5, "emergency": 1.5, "evacuation": 1.5,
	"rebel": 1.5, "militia": 1.5, "warlord": 1.5, "paramilitary": 1.5,
	"displaced": 1.5, "refugee": 1.5, "blockade": 1.5, "escalation": 1.5,
	// lower severity
	"protest": 1.0, "demonstration": 1.0, "unrest": 1.0, "tension": 1.0,
	"dispute": 1.0, "strike": 1.0, "riot": 1.0, "arrest": 1.0,
	"humanitarian": 1.0, "shortage": 1.0,
	"blackout": 1.0, "cyber": 1.0, "sabotage": 1.0, "embargo": 1.0,
}

// Conflict-domain negative sentiment lexicon. A general-purpose sentiment
// model misreads war reporting; this is curated for geopolitical text.
var negativeLexicon = map[string]float64{
	// extreme negative
	"killed": 1.0, "dead": 1.0, "deaths": 1.0, "massacre": 1.0,
	"genocide": 1.0, "slaughter": 1.0, "carnage": 1.0, "atrocity": 1.0,
	"annihilate": 1.0, "destroy": 1.0, "devastate": 1.0,
	// high negative
	"war": 0.85, "invasion": 0.85, "bombing": 0.85, "shelling": 0.85,
	"airstrike": 0.85, "missile": 0.85, "casualties": 0.85, "wounded": 0.85,
	"explosion": 0.85, "attack": 0.85, "siege": 0.85, "torture": 0.85,
	"terrorism": 0.85, "hostage": 0.85, "assassination": 0.85,
	"famine": 0.85, "starvation": 0.85, "catastrophe": 0.85,
	// medium negative
	"conflict": 0.65, "crisis": 0.65, "threat": 0.65, "violence": 0.65,
	"danger": 0.65, "risk": 0.65, "instability": 0.65, "collapse": 0.65,
	"escalation": 0.65, "confrontation": 0.65, "aggression": 0.65,
	"militant": 0.65, "insurgent": 0.65, "extremist": 0.65,
	"sanction": 0.65, "embargo": 0.65, "blockade": 0.65,
	"displaced": 0.65, "refugee": 0.65, "fled": 0.65, "evacuate": 0.65,
	"coup": 0.65, "overthrow": 0.65, "crackdown": 0.65,
	// low negative
	"tension": 0.4, "concern": 0.4, "worry": 0.4, "unrest": 0.4,
	"protest": 0.4, "dispute": 0.4, "arrest": 0.4, "detain": 0.4,
	"condemn": 0.4, "accuse": 0.4, "warn": 0.4, "reject": 0.4,
	"shortage": 0.4, "disruption": 0.4, "damage": 0.4,
}

var positiveLexicon = map[string]float64{
	"peace": 0.8, "ceasefire": 0.7, "agreement": 0.6, "treaty": 0.6,
	"cooperation": 0.6, "diplomatic": 0.5, "negotiate": 0.5, "resolve": 0.5,
	"aid": 0.4, "humanitarian aid": 0.5, "recovery": 0.4, "rebuild": 0.4,
	"stabilize": 0.5, "deescalation": 0.6, "withdraw": 0.4, "truce": 0.6,
}

// Known conflict zones / high-risk countries by ISO-2 code.
// Sources: ACLED, UCDP, US State Dept travel advisories, UNHCR.
var conflictZoneScores = map[string]float64{
	// active war zones
	"UA": 1.0, "SD": 1.0, "PS": 1.0, "MM": 1.0, "YE": 1.0, "SO": 1.0,
	// high-risk conflict and instability
	"SY": 0.85, "AF": 0.85, "IQ": 0.85, "LY": 0.85, "CD": 0.85,
	"ET": 0.85, "ML": 0.85, "BF": 0.85, "HT": 0.85,
	// elevated threat / sanctions targets
	"IR": 0.70, "KP": 0.70, "RU": 0.70, "IL": 0.70, "LB": 0.70,
	"NE": 0.70, "TD": 0.70, "MZ": 0.70, "NG": 0.70, "PK": 0.70, "CM": 0.70,
	// moderate risk
	"VE": 0.50, "CN": 0.50, "BY": 0.50, "ER": 0.50, "CF": 0.50,
	"SS": 0.50, "CO": 0.50, "MX": 0.50, "TW": 0.50,
	"KR": 0.40, "EG": 0.40,
	"TH": 0.35, "PH": 0.35, "IN": 0.35,
}

// Conflict-zone and actor names scanned in article text. Text-based matches
// are discounted x0.8 against a direct country-code lookup.
var conflictNameScores = map[string]float64{
	"ukraine": 1.0, "gaza": 1.0, "sudan": 1.0, "myanmar": 1.0,
	"yemen": 1.0, "somalia": 1.0, "syria": 0.85, "afghanistan": 0.85,
	"iraq": 0.85, "libya": 0.85, "congo": 0.85, "ethiopia": 0.85,
	"mali": 0.85, "haiti": 0.85, "iran": 0.70, "north korea": 0.70,
	"russia": 0.70, "hezbollah": 0.70, "hamas": 0.85, "taliban": 0.85,
	"isis": 1.0, "al-qaeda": 0.85, "boko haram": 0.85,
	"pakistan": 0.70, "nigeria": 0.70, "lebanon": 0.70,
	"burkina faso": 0.85, "niger": 0.70, "mozambique": 0.70,
}

var urgencyWords = []string{
	"breaking", "urgent", "just in", "developing", "alert",
	"imminent", "escalating", "surging", "unprecedented", "emergency",
}
