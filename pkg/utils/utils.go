package utils

import (
	"strings"
	"unicode"
)

// asciiFold maps common accented Latin letters to their unaccented
// equivalents for filename normalization.
var asciiFold = map[rune]rune{
	'À': 'A', 'Á': 'A', 'Â': 'A', 'Ã': 'A', 'Ä': 'A', 'Å': 'A',
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a',
	'È': 'E', 'É': 'E', 'Ê': 'E', 'Ë': 'E',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e',
	'Ì': 'I', 'Í': 'I', 'Î': 'I', 'Ï': 'I',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i',
	'Ò': 'O', 'Ó': 'O', 'Ô': 'O', 'Õ': 'O', 'Ö': 'O',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'Ù': 'U', 'Ú': 'U', 'Û': 'U', 'Ü': 'U',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u',
	'Ç': 'C', 'ç': 'c', 'Ñ': 'N', 'ñ': 'n',
}

// SanitizeFilename converts a filename to printable ASCII, folding accented
// Latin letters to their closest equivalents and replacing everything else
// with a dash.
func SanitizeFilename(filename string) string {
	if filename == "" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r < 128 && unicode.IsPrint(r) {
			return r
		}
		if folded, ok := asciiFold[r]; ok {
			return folded
		}
		return '-'
	}, filename)
}
