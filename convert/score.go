package convert

import "unicode"

// IsValidContent reports whether text carries enough real content: the ratio
// of non-whitespace runes to total runes must strictly exceed minRatio.
// Empty text is invalid regardless of the ratio; no text at all is not
// vacuously valid. Pure and deterministic; the pipeline scores per page with
// a loose ratio and whole documents with a strict one.
func IsValidContent(text string, minRatio float64) bool {
	total := 0
	valid := 0
	for _, r := range text {
		total++
		if !unicode.IsSpace(r) {
			valid++
		}
	}
	if total == 0 {
		return false
	}
	return float64(valid)/float64(total) > minRatio
}
