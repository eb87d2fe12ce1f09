package store

import (
	"regexp"
	"strings"
)

var (
	trailingQuantityRe = regexp.MustCompile(`\s+[\d.,]+?\s*(?:kg|gr|lt|ml|g|l)\s*$`)
	numericWordRe      = regexp.MustCompile(`^[\d.,]+(?:kg|gr|lt|ml|g|l)?$`)
)

// normalizeTurkish: Türkçe karakterleri ASCII karşılıklarına çevirir
// Örn: "SÜTLÜ ÇİKOLATA" -> "sutlu cikolata"
func normalizeTurkish(s string) string {
	replacements := map[rune]string{
		'ç': "c", 'Ç': "C",
		'ğ': "g", 'Ğ': "G",
		'ı': "i", 'İ': "I",
		'ö': "o", 'Ö': "O",
		'ş': "s", 'Ş': "S",
		'ü': "u", 'Ü': "U",
	}

	var result strings.Builder
	for _, r := range s {
		if replacement, ok := replacements[r]; ok {
			result.WriteString(replacement)
		} else {
			result.WriteRune(r)
		}
	}
	return strings.ToLower(result.String())
}

// normalizeName: fiyat listesi eşleştirmesi için ad normalizasyonu, sondaki
// miktar bilgisini (1KG, 500 GR) ve sayısal kelimeleri atar.
// Örn: "DOMATES SALÇASI 5 KG" -> "domates salcasi"
func normalizeName(s string) string {
	normalized := trailingQuantityRe.ReplaceAllString(normalizeTurkish(strings.TrimSpace(s)), "")

	var words []string
	for _, w := range strings.Fields(normalized) {
		if numericWordRe.MatchString(w) {
			continue
		}
		switch w {
		case "kg", "gr", "lt", "ml", "g", "l":
			continue
		}
		words = append(words, w)
	}
	return strings.Join(words, " ")
}
