package comps

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Shaper limits.
const (
	MaxCleanTokens   = 14
	MaxBrandTokens   = 2
	MaxLadderLength  = 5
	minIdentifierLen = 5
)

var (
	digitRunPattern   = regexp.MustCompile(`\b\d{8,14}\b`)
	hyphenCodePattern = regexp.MustCompile(`(?i)\b[a-z0-9]+(?:-[a-z0-9]+)+\b`)
	slashCodePattern  = regexp.MustCompile(`(?i)\b[a-z0-9]+/[a-z0-9]+\b`)
	digitPattern      = regexp.MustCompile(`\d`)
	twoDigitsPattern  = regexp.MustCompile(`\d\D*\d`)
)

const quoteChars = "\"'`‘’“”"

// Shape holds the matching signals extracted from one query.
type Shape struct {
	// RawTokens are all tokens before fluff removal.
	RawTokens []string
	// Tokens are the cleaned, deduplicated tokens (at most MaxCleanTokens).
	Tokens       []string
	Identifiers  []string
	BrandTokens  []string
	RequiredPair *BrandPair
	Ladder       []string

	// ProductIntent is set when the query asks for a product rather than
	// something that goes with it.
	ProductIntent  bool
	WantsAccessory bool
	WantsBundle    bool
}

// ShapeQuery extracts tokens, identifiers, brand signals and the search
// ladder from raw query text.
func ShapeQuery(raw string) Shape {
	lower := strings.ToLower(raw)
	s := Shape{
		RawTokens:   tokenize(raw),
		Identifiers: extractIdentifiers(raw),
	}

	s.Tokens = cleanTokens(s.RawTokens)
	s.BrandTokens = brandTokens(s.Tokens, s.Identifiers)
	s.RequiredPair = findRequiredPair(s.RawTokens)
	s.Ladder = buildLadder(s.Tokens, s.Identifiers)

	s.WantsAccessory = hasAccessoryLanguage(toSet(s.RawTokens...), strings.Join(s.RawTokens, " "))
	s.WantsBundle = bundlePattern.MatchString(lower)
	s.ProductIntent = !s.WantsAccessory && (len(s.Identifiers) > 0 || containsAny(s.RawTokens, productKeywords))

	return s
}

// tokenize lowercases and splits on whitespace and punctuation. Dots and
// apostrophes stay inside tokens ("2.0", "men's"); surrounding quotes are
// stripped.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), isSeparator)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, quoteChars)
		f = strings.Trim(f, ".")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func isSeparator(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	if r == '.' || strings.ContainsRune(quoteChars, r) {
		return false
	}
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// extractIdentifiers scans the original text for model numbers and part
// codes. Codes need two digits so "3-pack" or "usb-c" are not identifiers.
func extractIdentifiers(text string) []string {
	var ids []string
	seen := make(map[string]struct{})
	for _, pattern := range []*regexp.Regexp{digitRunPattern, hyphenCodePattern, slashCodePattern} {
		for _, m := range pattern.FindAllString(text, -1) {
			m = strings.ToLower(m)
			if len(m) < minIdentifierLen || !twoDigitsPattern.MatchString(m) {
				continue
			}
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			ids = append(ids, m)
		}
	}
	return ids
}

// cleanTokens drops fluff, single letters and duplicates. A query made only
// of fluff keeps its raw tokens so the ladder is never empty.
func cleanTokens(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{})
	for _, t := range raw {
		if _, fluff := fluffWords[t]; fluff {
			continue
		}
		if utf8.RuneCountInString(t) == 1 && !unicode.IsDigit([]rune(t)[0]) {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		out = dedupe(raw)
	}
	if len(out) > MaxCleanTokens {
		out = out[:MaxCleanTokens]
	}
	return out
}

// isIdentifierPart reports whether token is an identifier or one of the
// pieces tokenize cuts an identifier into.
func isIdentifierPart(token string, identifiers []string) bool {
	for _, id := range identifiers {
		if token == id {
			return true
		}
		for _, part := range tokenize(id) {
			if token == part {
				return true
			}
		}
	}
	return false
}

func brandTokens(tokens, identifiers []string) []string {
	var brands []string
	for _, t := range tokens {
		if len(brands) == MaxBrandTokens {
			break
		}
		if utf8.RuneCountInString(t) <= 2 || digitPattern.MatchString(t) || isIdentifierPart(t, identifiers) {
			continue
		}
		brands = append(brands, t)
	}
	return brands
}

func findRequiredPair(raw []string) *BrandPair {
	set := toSet(raw...)
	for _, p := range requiredBrandPairs {
		_, first := set[p.First]
		_, second := set[p.Second]
		if first && second {
			pair := p
			return &pair
		}
	}
	return nil
}

// buildLadder orders search variants from most to least specific.
func buildLadder(tokens, identifiers []string) []string {
	var nonID []string
	for _, t := range tokens {
		if !isIdentifierPart(t, identifiers) {
			nonID = append(nonID, t)
		}
	}

	var variants []string
	if len(identifiers) > 0 {
		id := identifiers[0]
		variants = append(variants, id)
		if len(nonID) > 0 {
			variants = append(variants, id+" "+joinFirst(nonID, 3))
		}
	}
	variants = append(variants, joinFirst(tokens, 6))
	if len(tokens) > 6 {
		variants = append(variants, strings.Join(tokens, " "))
	}
	variants = append(variants, joinFirst(tokens, 4))

	ladder := make([]string, 0, MaxLadderLength)
	for _, v := range dedupe(variants) {
		if v == "" {
			continue
		}
		ladder = append(ladder, v)
		if len(ladder) == MaxLadderLength {
			break
		}
	}
	return ladder
}

func joinFirst(tokens []string, n int) string {
	if len(tokens) > n {
		tokens = tokens[:n]
	}
	return strings.Join(tokens, " ")
}

func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it]; dup {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

func containsAny(tokens []string, set map[string]struct{}) bool {
	for _, t := range tokens {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}

// hasAccessoryLanguage checks a word set and its joined text against the
// accessory vocabulary.
func hasAccessoryLanguage(words map[string]struct{}, joined string) bool {
	for w := range words {
		if _, ok := accessoryWords[w]; ok {
			return true
		}
	}
	for _, phrase := range accessoryPhrases {
		if strings.Contains(joined, phrase) {
			return true
		}
	}
	return false
}
