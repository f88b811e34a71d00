package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/vistamar/listings-api/internal/models"
)

// diacriticStripper removes combining marks after NFD decomposition, so
// "Piscina Térmica" and "piscina termica" normalize identically.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeCode canonicalizes a property code for cross-provider identity
// comparison: trimmed and uppercased.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// normalizeLabel canonicalizes a free-text characteristic label:
// lowercased, diacritics stripped, whitespace collapsed.
func normalizeLabel(label string) string {
	stripped, _, err := transform.String(diacriticStripper, label)
	if err != nil {
		stripped = label
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

// labelsMatch reports whether two normalized labels match: exact equality
// or a substring relationship in either direction.
func labelsMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

// matchesCharacteristics reports whether the property satisfies every
// requested characteristic (AND across requests) given its combined
// property+location labels (OR across the property's own values).
func matchesCharacteristics(requested []string, p *models.Property) bool {
	if len(requested) == 0 {
		return true
	}

	available := make([]string, 0, len(p.PropertyCharacteristics)+len(p.LocationCharacteristics))
	for _, label := range p.PropertyCharacteristics {
		available = append(available, normalizeLabel(label))
	}
	for _, label := range p.LocationCharacteristics {
		available = append(available, normalizeLabel(label))
	}

	for _, want := range requested {
		normalized := normalizeLabel(want)
		found := false
		for _, have := range available {
			if labelsMatch(normalized, have) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// constructionStatusAliases maps filter vocabulary (including the
// Portuguese obra-status terms the site sends) onto canonical statuses.
var constructionStatusAliases = map[string]models.ConstructionStatus{
	"pre-launch":         models.ConstructionPreLaunch,
	"pre-lancamento":     models.ConstructionPreLaunch,
	"pre_lancamento":     models.ConstructionPreLaunch,
	"launch":             models.ConstructionLaunch,
	"lancamento":         models.ConstructionLaunch,
	"under-construction": models.ConstructionUnderConstruction,
	"em-obras":           models.ConstructionUnderConstruction,
	"em_obras":           models.ConstructionUnderConstruction,
	"ready":              models.ConstructionReady,
	"pronto":             models.ConstructionReady,
}

// canonicalConstructionStatus resolves a requested filter value. Unknown
// values pass through unchanged so a future status still compares by
// equality.
func canonicalConstructionStatus(value string) models.ConstructionStatus {
	key := normalizeLabel(value)
	key = strings.ReplaceAll(key, " ", "-")
	if canonical, ok := constructionStatusAliases[key]; ok {
		return canonical
	}
	return models.ConstructionStatus(key)
}

// matchesConstructionStatus applies the obra-status rules from the
// client-side re-filter: a property with no status defaults to ready, and
// the pre-launch and launch buckets are treated as adjacent. A request for
// either matches a property tagged with either; the two stages are fuzzy
// in practice.
func matchesConstructionStatus(requested []string, status models.ConstructionStatus) bool {
	if len(requested) == 0 {
		return true
	}
	if status == "" {
		status = models.ConstructionReady
	}
	for _, want := range requested {
		canonical := canonicalConstructionStatus(want)
		if canonical == status {
			return true
		}
		if canonical == models.ConstructionPreLaunch && status == models.ConstructionLaunch {
			return true
		}
		if canonical == models.ConstructionLaunch && status == models.ConstructionPreLaunch {
			return true
		}
	}
	return false
}
