package engine

import "strings"

const (
	miscellaneousCategory  = "Miscellaneous"
	normalizePenalty       = 0.7
	normalizeConfidenceMin = 0.4
)

// denylist holds placeholder names the classifier sometimes emits instead
// of a real category.
var denylist = map[string]struct{}{
	"other":   {},
	"unknown": {},
	"misc":    {},
}

// normalizeCategory trims the predicted name and replaces empty or
// placeholder names with Miscellaneous at reduced confidence.
func normalizeCategory(name string, confidence float64) (string, float64) {
	name = strings.TrimSpace(name)

	if _, denied := denylist[strings.ToLower(name)]; name == "" || denied {
		penalized := confidence * normalizePenalty
		if penalized < normalizeConfidenceMin {
			penalized = normalizeConfidenceMin
		}
		return miscellaneousCategory, penalized
	}

	return name, confidence
}

// canonicalName adopts the ledger's spelling when the predicted name
// matches a suggested category ignoring case; otherwise the prediction is
// kept verbatim and a new category will be created for it.
func canonicalName(name string, suggested []string) string {
	for _, s := range suggested {
		if strings.EqualFold(s, name) {
			return s
		}
	}
	return name
}
