package bbcode

import (
	"iter"
	"regexp"
	"slices"
	"strings"
)

// Occurrence is one matched tag.
type Occurrence struct {
	Kind Kind
	// Reference is the captured body, untouched (case and whitespace kept).
	Reference string
	// Span is the exact matched text including delimiters.
	Span string
	// Start and End are byte offsets of Span in the scanned text.
	Start int
	End   int
}

// Replacement substitutes Text for the bytes in [Start, End).
type Replacement struct {
	Start int
	End   int
	Text  string
}

// coordBody is the only body shape a coordinate tag accepts.
const coordBody = `\d+\|\d+`

var patterns = compilePatterns()

func compilePatterns() map[Kind]*regexp.Regexp {
	out := make(map[Kind]*regexp.Regexp, len(Kinds))
	for _, kind := range Kinds {
		body := `.*?`
		if kind == KindCoord {
			body = coordBody
		}
		out[kind] = regexp.MustCompile(regexp.QuoteMeta(kind.Open()) + `(` + body + `)` + regexp.QuoteMeta(kind.Close()))
	}
	return out
}

// Scan yields the occurrences of kind in text from left to right. The search
// resumes after the previous match only when the consumer asks for more.
// Unknown kinds yield nothing.
func Scan(text string, kind Kind) iter.Seq[Occurrence] {
	re := patterns[kind]
	return func(yield func(Occurrence) bool) {
		if re == nil || !strings.Contains(text, kind.Close()) {
			return
		}
		for pos := 0; pos < len(text); {
			loc := re.FindStringSubmatchIndex(text[pos:])
			if loc == nil {
				return
			}
			occ := Occurrence{
				Kind:      kind,
				Reference: text[pos+loc[2] : pos+loc[3]],
				Start:     pos + loc[0],
				End:       pos + loc[1],
			}
			occ.Span = text[occ.Start:occ.End]
			if !yield(occ) {
				return
			}
			pos = occ.End
		}
	}
}

// Collect returns every occurrence of kind in text.
func Collect(text string, kind Kind) []Occurrence {
	return slices.Collect(Scan(text, kind))
}

// Splice applies replacements to text by position. Replacements are applied
// in Start order; one overlapping an earlier replacement is dropped.
func Splice(text string, replacements []Replacement) string {
	if len(replacements) == 0 {
		return text
	}
	ordered := slices.Clone(replacements)
	slices.SortStableFunc(ordered, func(a, b Replacement) int {
		return a.Start - b.Start
	})

	var sb strings.Builder
	sb.Grow(len(text))
	cursor := 0
	for _, r := range ordered {
		if r.Start < cursor || r.End < r.Start || r.End > len(text) {
			continue
		}
		sb.WriteString(text[cursor:r.Start])
		sb.WriteString(r.Text)
		cursor = r.End
	}
	sb.WriteString(text[cursor:])
	return sb.String()
}
