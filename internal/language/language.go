package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Want describes one subtitle language an item still needs. The
// HearingImpaired and Forced flags must match a candidate exactly for the
// candidate to satisfy the want.
type Want struct {
	Code            string
	HearingImpaired bool
	Forced          bool
}

// Tag renders the canonical code:modifier form ("es:hi", "pt:forced", "en").
func (w Want) Tag() string {
	switch {
	case w.HearingImpaired:
		return w.Code + ":hi"
	case w.Forced:
		return w.Code + ":forced"
	default:
		return w.Code
	}
}

// String implements fmt.Stringer using the canonical tag form.
func (w Want) String() string { return w.Tag() }

// FileSuffix renders the filename infix used when a subtitle is written next
// to its media file ("es", "es.hi", "es.forced").
func (w Want) FileSuffix() string {
	switch {
	case w.HearingImpaired:
		return w.Code + ".hi"
	case w.Forced:
		return w.Code + ".forced"
	default:
		return w.Code
	}
}

// DisplayName renders a human-readable name for progress and table output,
// e.g. "English", "Spanish (HI)", "Portuguese (forced)". Unrecognized codes
// fall back to the uppercased code.
func (w Want) DisplayName() string {
	name := displayName(w.Code)
	switch {
	case w.HearingImpaired:
		return name + " (HI)"
	case w.Forced:
		return name + " (forced)"
	default:
		return name
	}
}

func displayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	tag, err := language.Parse(strings.ToLower(trimmed))
	if err == nil {
		if name := display.English.Languages().Name(tag); name != "" {
			return name
		}
	}
	return strings.ToUpper(trimmed)
}

// Normalize canonicalizes a language code to its shortest registered form
// ("eng" becomes "en"). Unrecognized codes are lowercased and passed through.
func Normalize(code string) string {
	trimmed := strings.ToLower(strings.TrimSpace(code))
	if trimmed == "" {
		return ""
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return trimmed
	}
	base, conf := tag.Base()
	if conf == language.No {
		return trimmed
	}
	return base.String()
}

// Equal reports whether two language codes name the same language after
// normalization.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// ParseMissing decodes the stored missing-languages state of a library item
// into the ordered wants the acquisition run will work through.
//
// The stored form is a bracketed, single-quoted list such as
// "['en','es:hi','pt:forced']". A ":hi" suffix marks the want hearing
// impaired and ":forced" marks it forced; any other modifier is dropped and
// only the base code kept. Null entries and entries blank after trimming are
// skipped. A blank or malformed state yields no wants rather than an error.
// Order and duplicates of the stored state are preserved.
func ParseMissing(raw string) []Want {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "[]" {
		return nil
	}
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return nil
	}

	tokens, ok := splitList(trimmed[1 : len(trimmed)-1])
	if !ok {
		return nil
	}

	wants := make([]Want, 0, len(tokens))
	for _, token := range tokens {
		switch token {
		case "None", "null":
			continue
		}
		entry, ok := unquote(token)
		if !ok {
			return nil
		}
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		wants = append(wants, parseEntry(entry))
	}
	return wants
}

// ParseTag decodes a single want tag such as "en", "es:hi", or "pt:forced".
// Blank input yields a zero want; callers should check Code before use.
func ParseTag(entry string) Want {
	trimmed := strings.TrimSpace(entry)
	if trimmed == "" {
		return Want{}
	}
	return parseEntry(trimmed)
}

// FormatMissing renders wants back into the stored bracketed form so an
// item's missing state can be rewritten after a want is satisfied. An empty
// slice renders as "[]". Round-trips with ParseMissing.
func FormatMissing(wants []Want) string {
	if len(wants) == 0 {
		return "[]"
	}
	parts := make([]string, len(wants))
	for i, want := range wants {
		parts[i] = "'" + want.Tag() + "'"
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func parseEntry(entry string) Want {
	parts := strings.SplitN(entry, ":", 2)
	want := Want{Code: strings.ToLower(strings.TrimSpace(parts[0]))}
	if len(parts) == 2 {
		switch strings.ToLower(strings.TrimSpace(parts[1])) {
		case "hi":
			want.HearingImpaired = true
		case "forced":
			want.Forced = true
		}
	}
	return want
}

// splitList tokenizes the comma-separated interior of the stored list,
// honouring quotes. A dangling quote or an empty token between commas marks
// the state malformed.
func splitList(inner string) ([]string, bool) {
	var tokens []string
	var current strings.Builder
	var quote rune

	flush := func(last bool) bool {
		token := strings.TrimSpace(current.String())
		current.Reset()
		if token == "" {
			// Allow a trailing comma; reject empty interior tokens.
			return last
		}
		tokens = append(tokens, token)
		return true
	}

	for _, r := range inner {
		switch {
		case quote != 0:
			current.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
			current.WriteRune(r)
		case r == ',':
			if !flush(false) {
				return nil, false
			}
		default:
			current.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, false
	}
	if !flush(true) {
		return nil, false
	}
	if len(tokens) == 0 && strings.TrimSpace(inner) != "" {
		return nil, false
	}
	return tokens, true
}

func unquote(token string) (string, bool) {
	if len(token) >= 2 {
		first := token[0]
		last := token[len(token)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			return token[1 : len(token)-1], true
		}
	}
	return "", false
}
