package service

import (
	"regexp"
	"strconv"
	"strings"
)

// Model output is close to JSON but not guaranteed valid: it arrives wrapped
// in markdown fences or prose, sprinkled with comments, fractions, duplicate
// keys and trailing commas. Each defect class gets its own pure text
// transform so it can be tested in isolation, and RepairJSON chains them in
// a fixed order before the single strict parse in Ingest.
//
// The order matters: fences are stripped before comments (a fence line can
// hide a comment), comments before fractions (a comment may contain a slash
// that looks like a fraction), and trailing commas last because the earlier
// rewrites can leave trailing artifacts behind.

var fenceRe = regexp.MustCompile("(?m)^\\s*```[a-zA-Z]*\\s*$")

// StripFences removes markdown code-fence marker lines, with or without a
// language tag.
func StripFences(s string) string {
	return fenceRe.ReplaceAllString(s, "")
}

// ExtractObject cuts the text down to the first '{' through the last '}'.
// Surrounding prose goes with the fences. Returns ErrNoJSONFound when no
// object boundary exists.
func ExtractObject(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", ErrNoJSONFound
	}
	return s[start : end+1], nil
}

// StripComments removes //-line and /* */ block comments that models
// sometimes emit inside JSON. String contents are left untouched, so an
// "http://..." value survives.
func StripComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch {
		case c == '"':
			inString = true
			b.WriteByte(c)
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				b.WriteByte('\n')
			}
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			i += 2
			for i+1 < len(s) && !(s[i] == '*' && s[i+1] == '/') {
				i++
			}
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

var fractionRe = regexp.MustCompile(`"(\d+)\s*/\s*(\d+)"`)

// RepairFractions converts quoted fraction values ("1/2") into their decimal
// string equivalent ("0.5"). Models emit these for ingredient amounts.
func RepairFractions(s string) string {
	return fractionRe.ReplaceAllStringFunc(s, func(match string) string {
		sub := fractionRe.FindStringSubmatch(match)
		num, err1 := strconv.ParseFloat(sub[1], 64)
		den, err2 := strconv.ParseFloat(sub[2], 64)
		if err1 != nil || err2 != nil || den == 0 {
			return match
		}
		return `"` + strconv.FormatFloat(num/den, 'f', -1, 64) + `"`
	})
}

var memberKeyRe = regexp.MustCompile(`"([A-Za-z_][A-Za-z0-9_]*)"\s*:`)

// DropDuplicateKeys removes the earlier of two consecutive object members
// that use the same key, keeping the later value. Observed with "unit".
func DropDuplicateKeys(s string) string {
	for {
		locs := memberKeyRe.FindAllStringSubmatchIndex(s, -1)
		removed := false
		for i := 0; i+1 < len(locs); i++ {
			if s[locs[i][2]:locs[i][3]] != s[locs[i+1][2]:locs[i+1][3]] {
				continue
			}
			between := strings.TrimSpace(s[locs[i][1]:locs[i+1][0]])
			// Only collapse adjacent scalar members; anything nested is a
			// legitimate reuse of the key in a different object.
			if !strings.HasSuffix(between, ",") || strings.ContainsAny(between, "{}[]") {
				continue
			}
			s = s[:locs[i][0]] + s[locs[i+1][0]:]
			removed = true
			break
		}
		if !removed {
			return s
		}
	}
}

var bareAmountRe = regexp.MustCompile(`("amount"\s*:\s*)([0-9]+(?:[./ ][0-9]+)*)`)

// QuoteBareScalars wraps unquoted amount values in quotes. The schema wants
// amounts as strings but models sometimes emit bare numbers or fractions.
func QuoteBareScalars(s string) string {
	return bareAmountRe.ReplaceAllString(s, `$1"$2"`)
}

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// StripTrailingCommas removes commas immediately preceding a closing brace
// or bracket.
func StripTrailingCommas(s string) string {
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

var blankLineRe = regexp.MustCompile(`\n\s*\n`)

// DropBlankLines collapses blank lines left behind by the earlier stages.
func DropBlankLines(s string) string {
	for blankLineRe.MatchString(s) {
		s = blankLineRe.ReplaceAllString(s, "\n")
	}
	return s
}

// RepairJSON runs the full defect-repair chain over de-fenced model output
// and returns text ready for a strict parse.
func RepairJSON(raw string) (string, error) {
	s, err := ExtractObject(StripFences(raw))
	if err != nil {
		return "", err
	}
	s = StripComments(s)
	s = RepairFractions(s)
	s = DropDuplicateKeys(s)
	s = QuoteBareScalars(s)
	s = StripTrailingCommas(s)
	s = DropBlankLines(s)
	return s, nil
}
