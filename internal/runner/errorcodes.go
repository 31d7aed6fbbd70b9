package runner

import "regexp"

// errorCodePattern matches a bracketed error code such as "[E1234]".
// The four characters after the E are not validated.
var errorCodePattern = regexp.MustCompile(`\[(E.{4})\]`)

// ScanErrorCodes returns every error code in line, left to right.
func ScanErrorCodes(line string) []string {
	matches := errorCodePattern.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 {
		return nil
	}
	codes := make([]string, 0, len(matches))
	for _, m := range matches {
		codes = append(codes, m[1])
	}
	return codes
}
