package extract

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// stripPolicy удаляет любую разметку, оставляя голый текст.
var stripPolicy = bluemonday.StrictPolicy()

var whitespaceRe = regexp.MustCompile(`\s+`)

// Sanitize готовит сырой текст краулера к отправке на извлечение:
// срезает HTML-разметку, раскрывает сущности, схлопывает переводы строк и
// повторные пробелы в одиночные, ограничивает длину maxRunes
// (maxRunes <= 0 — без ограничения).
func Sanitize(raw string, maxRunes int) string {
	text := stripPolicy.Sanitize(raw)
	text = html.UnescapeString(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if maxRunes > 0 {
		runes := []rune(text)
		if len(runes) > maxRunes {
			text = string(runes[:maxRunes])
		}
	}

	return text
}
