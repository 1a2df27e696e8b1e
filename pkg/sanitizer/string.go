package sanitizer

import "strings"

// TrimAndNormalize trims s and collapses every run of whitespace into a
// single space.
func TrimAndNormalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeArea(area string) string {
	return TrimAndNormalize(area)
}

func NormalizeAddress(address string) string {
	return strings.TrimRight(TrimAndNormalize(address), ", ")
}

// NormalizeLotPID turns a public lot id such as " cp  07 " into "CP-07".
func NormalizeLotPID(pid string) string {
	return strings.ToUpper(strings.Join(strings.Fields(pid), "-"))
}
