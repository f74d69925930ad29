package app

import (
	"regexp"
	"strings"
)

var (
	reTags     = regexp.MustCompile(`(?m)^\[.*?\]\s*`) // [Tag "Value"] lines
	reComments = regexp.MustCompile(`\{[^}]*\}`)       // {...} comments (incl. [%clk ...])
	reNAG      = regexp.MustCompile(`\$\d+`)           // $1, $2, etc.
	reSpaces   = regexp.MustCompile(`\s+`)
	reSquare   = regexp.MustCompile(`^[a-h][1-8]$`)
	reTagPair  = regexp.MustCompile(`\[(\w+)\s+"([^"]*)"\]`)
)

// ParsePGNTags reads the [Tag "Value"] pairs from a PGN header.
func ParsePGNTags(pgn string) map[string]string {
	tags := make(map[string]string)
	for _, m := range reTagPair.FindAllStringSubmatch(pgn, -1) {
		tags[m[1]] = m[2]
	}
	return tags
}

// NormalizePGN removes headers/comments/NAGs and collapses whitespace.
// Chess.com and Lichess exports both carry clock comments that trip up
// strict PGN parsers.
func NormalizePGN(pgn string) string {
	pgn = reTags.ReplaceAllString(pgn, "")
	pgn = reComments.ReplaceAllString(pgn, "")
	pgn = reNAG.ReplaceAllString(pgn, "")
	pgn = reSpaces.ReplaceAllString(strings.TrimSpace(pgn), " ")
	return pgn
}

// ValidSquare reports whether s names a square on the board (a1..h8).
func ValidSquare(s string) bool {
	return reSquare.MatchString(s)
}

// ExtractJSONBlock strips a markdown code fence around a JSON document, if
// any, and returns the trimmed body. Models asked for strict JSON still
// wrap it in ```json fences now and then.
func ExtractJSONBlock(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}
