package interpret

import (
	"strings"

	"financas/internal/core"
)

// classifyInstrument decides how the transaction was paid. A known brand
// anywhere wins; otherwise the words following "cartão" name the card.
func classifyInstrument(words []string) (core.Method, string) {
	for _, w := range words {
		if brandSet.has(w) {
			return core.Card, core.Capitalize(w)
		}
	}

	at := -1
	for i, w := range words {
		if cardWordSet.has(w) {
			at = i
			break
		}
	}
	if at < 0 {
		return core.Cash, ""
	}

	var name []string
	for _, w := range words[at+1:] {
		if cardStopWords.has(w) {
			break
		}
		name = append(name, w)
	}
	if len(name) == 0 {
		return core.Card, defaultCardName
	}
	return core.Card, core.Capitalize(strings.Join(name, " "))
}
