package interpret

import (
	"strings"

	"financas/internal/core"
)

// classifyKind reports income when any word is an income keyword.
func classifyKind(words []string) core.Kind {
	for _, w := range words {
		if incomeKeywords.has(w) {
			return core.Income
		}
	}
	return core.Expense
}

// matchCategory returns the first table category containing a word, words
// taken in message order.
func matchCategory(words []string) (string, bool) {
	for _, w := range words {
		for i, set := range keywordIndex {
			if set.has(w) {
				return categories[i].Name, true
			}
		}
	}
	return "", false
}

// classifyCategory assigns the category. A table hit is used even when it
// belongs to the other kind: "100 presente" is income in Lazer/entretenimento.
func classifyCategory(words []string, kind core.Kind, card string) string {
	if name, ok := matchCategory(words); ok {
		return core.Capitalize(name)
	}
	if kind == core.Income {
		return defaultIncomeLabel
	}

	skip := newWordSet(cardBrands, cardWords, strings.Fields(core.Lower(card)))
	for _, w := range words {
		if core.IsWord(w) && !skip.has(w) {
			return core.Capitalize(w)
		}
	}
	return defaultExpenseLabel
}
