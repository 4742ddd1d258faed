package models

const ellipsis = "..."

// AbbreviateInCenter shortens s to at most maxLen runes by keeping its head
// and tail around an ellipsis, so both ends of identifiers stay readable.
func AbbreviateInCenter(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen || maxLen <= len(ellipsis) {
		return s
	}

	keep := maxLen - len(ellipsis)
	head := keep / 2
	tail := keep - head
	return string(runes[:head]) + ellipsis + string(runes[len(runes)-tail:])
}
