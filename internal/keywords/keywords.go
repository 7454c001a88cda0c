// Package keywords derives lowercase topic tags from study material so
// logged events carry something rankable. It is intentionally dumb: token
// frequency with a stopword filter, no stemming.
package keywords

import (
	"sort"
	"strings"
	"unicode"
)

const maxKeywords = 5

var stopwords = map[string]bool{
	"about": true, "after": true, "again": true, "also": true, "because": true,
	"been": true, "before": true, "being": true, "between": true, "both": true,
	"could": true, "does": true, "doing": true, "down": true, "during": true,
	"each": true, "from": true, "further": true, "have": true, "having": true,
	"here": true, "into": true, "just": true, "more": true, "most": true,
	"only": true, "other": true, "over": true, "same": true, "should": true,
	"some": true, "such": true, "than": true, "that": true, "their": true,
	"them": true, "then": true, "there": true, "these": true, "they": true,
	"this": true, "those": true, "through": true, "under": true, "until": true,
	"very": true, "what": true, "when": true, "where": true, "which": true,
	"while": true, "will": true, "with": true, "would": true, "your": true,
}

// Extract returns up to five lowercase keywords ranked by frequency in text.
// Ties keep first-appearance order. Tokens shorter than four characters and
// common function words are skipped.
func Extract(text string) []string {
	counts := make(map[string]int)
	var order []string

	for _, raw := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(raw) < 4 || stopwords[raw] {
			continue
		}
		if counts[raw] == 0 {
			order = append(order, raw)
		}
		counts[raw]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}

// Normalize lowercases, trims and caps a caller-supplied keyword list so
// event rows never carry more than five tags.
func Normalize(keywords []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}
