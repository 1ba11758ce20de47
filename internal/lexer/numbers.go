package lexer

import "strconv"

// parseInt parses a decimal integer literal the way original_source's
// rule_int does: digit by digit, base 10, wrapping on 64-bit overflow
// rather than rejecting it. The source never treats overflow as a
// diagnostic condition, so neither does this port.
func parseInt(text string) int64 {
	var v uint64
	for i := 0; i < len(text); i++ {
		v = v*10 + uint64(text[i]-'0')
	}
	return int64(v)
}

// hasRedundantLeadingZero reports whether text is a decimal integer literal
// with a redundant leading `0` (e.g. "01"), the AMBIGUOUS_INT condition
// from spec §7 and original_source's err_amb_int rule ("The preceding `0`
// is redundant. Use the `0o` prefix..."). A single "0" is not redundant.
func hasRedundantLeadingZero(text string) bool {
	return len(text) > 1 && text[0] == '0'
}

// parseFloat parses a decimal floating-point literal. The lexer only ever
// calls this on text it has already validated the shape of, so a parse
// error here would indicate an internal bug rather than bad input.
func parseFloat(text string) float64 {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return v
}
