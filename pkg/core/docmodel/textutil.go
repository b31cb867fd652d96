package docmodel

import "strings"

var spaceStripper = strings.NewReplacer(" ", "", "　", "", "\n", "", "\t", "", "\r", "")

// StripSpace removes ASCII and full-width spaces, tabs and newlines. Character
// minimums count content only.
func StripSpace(s string) string {
	return spaceStripper.Replace(s)
}

// CountChars returns the rune count of the space-stripped text. Narrative
// text is Japanese, so byte length would overstate volume threefold.
func CountChars(s string) int {
	return len([]rune(StripSpace(s)))
}

var digitNormalizer = strings.NewReplacer(
	"０", "0", "１", "1", "２", "2", "３", "3", "４", "4",
	"５", "5", "６", "6", "７", "7", "８", "8", "９", "9",
	"−", "-", "‐", "-", "‑", "-", "‒", "-", "–", "-", "—", "-", "―", "-",
)

// NormalizeDigits converts full-width digits and dash variants to ASCII so
// numeric patterns match regardless of the input method that produced them.
func NormalizeDigits(s string) string {
	return digitNormalizer.Replace(s)
}
