package service

import (
	"bytes"
	"encoding/json"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/pageza/ai-book/backend/internal/logging"
	"github.com/pageza/ai-book/backend/internal/types"
)

// arrayKeys are probed, in order, when the model wraps its array in an object
var arrayKeys = []string{"items", "books", "recommendations", "results"}

// maxEmbeddedAttempts bounds how many '[' positions the embedded tier tries
const maxEmbeddedAttempts = 32

// defaultRecommendations is the non-personalized safety net
var defaultRecommendations = []types.Recommendation{
	{Title: "The Little Prince", Author: "Antoine de Saint-Exupéry", Reason: "A short, timeless fable about friendship and what matters."},
	{Title: "1984", Author: "George Orwell", Reason: "The defining dystopian novel about surveillance and truth."},
	{Title: "Dune", Author: "Frank Herbert", Reason: "An epic of politics, ecology and prophecy on a desert planet."},
	{Title: "To Kill a Mockingbird", Author: "Harper Lee", Reason: "A moving story of justice and growing up in the American South."},
	{Title: "Three Comrades", Author: "Erich Maria Remarque", Reason: "Friendship and love in the shadow of post-war Germany."},
}

// DefaultRecommendations returns a copy of the static fallback list
func DefaultRecommendations() []types.Recommendation {
	return slices.Clone(defaultRecommendations)
}

// ExtractorOptions tunes Extractor
type ExtractorOptions struct {
	// DedupeTitles drops case-insensitive repeat titles, keeping the first, before the cap.
	DedupeTitles bool
	// DisableDefault returns an empty set instead of the static list when nothing is recovered.
	DisableDefault bool
}

// Extractor turns raw model output into a bounded RecommendationSet.
// It never fails: malformed output degrades through the tiers instead.
type Extractor struct {
	opts ExtractorOptions
	log  zerolog.Logger
}

// NewExtractor creates an Extractor
func NewExtractor(opts ExtractorOptions) *Extractor {
	return &Extractor{opts: opts, log: logging.With("extractor")}
}

// candidate is an entry before normalization
type candidate struct {
	title  string
	author string
	reason string
}

// Extract runs the tiers in order and returns the first one that yields a usable record
func (e *Extractor) Extract(raw string) types.RecommendationSet {
	tiers := []struct {
		tier types.Tier
		run  func(string) []candidate
	}{
		{types.TierJSON, wholePayload},
		{types.TierEmbedded, embeddedArray},
		{types.TierLines, lineHeuristic},
	}

	for _, t := range tiers {
		if items := e.normalize(t.run(raw)); len(items) > 0 {
			e.log.Debug().Str("tier", string(t.tier)).Int("count", len(items)).Msg("recommendations extracted")
			return types.RecommendationSet{Items: items, Tier: t.tier}
		}
	}

	if e.opts.DisableDefault {
		e.log.Warn().Int("raw_bytes", len(raw)).Msg("no recommendations recovered from completion")
		return types.RecommendationSet{Items: []types.Recommendation{}, Tier: types.TierNone}
	}
	e.log.Warn().Int("raw_bytes", len(raw)).Msg("no recommendations recovered, serving default list")
	return types.RecommendationSet{Items: DefaultRecommendations(), Degraded: true, Tier: types.TierDefault}
}

// normalize trims fields, drops untitled entries, optionally dedupes, and caps the list
func (e *Extractor) normalize(cands []candidate) []types.Recommendation {
	out := make([]types.Recommendation, 0, types.MaxRecommendations)
	seen := make(map[string]struct{})
	for _, c := range cands {
		title := strings.TrimSpace(c.title)
		if title == "" {
			continue
		}
		if e.opts.DedupeTitles {
			key := strings.ToLower(title)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, types.Recommendation{
			Title:  title,
			Author: strings.TrimSpace(c.author),
			Reason: strings.TrimSpace(c.reason),
		})
		if len(out) == types.MaxRecommendations {
			break
		}
	}
	return out
}

// --- tier 1: whole payload ---------------------------------------------------

// wholePayload decodes the trimmed text as an array, or as an object holding an
// array under one of arrayKeys. Any other shape yields nothing.
func wholePayload(raw string) []candidate {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '[':
		return decodeArray(data)
	case '{':
		return decodeKeyedArray(data)
	default:
		return nil
	}
}

func decodeKeyedArray(data []byte) []candidate {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	for _, key := range arrayKeys {
		value, ok := obj[key]
		if !ok {
			continue
		}
		value = bytes.TrimSpace(value)
		if len(value) > 0 && value[0] == '[' {
			var elems []json.RawMessage
			if json.Unmarshal(value, &elems) == nil {
				return decodeElements(elems)
			}
		}
	}
	return nil
}

// decodeArray decodes data as a JSON array; invalid JSON yields nothing
func decodeArray(data []byte) []candidate {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil
	}
	return decodeElements(elems)
}

// decodeElements tags each element by its JSON kind: object, string, or anything else (dropped)
func decodeElements(elems []json.RawMessage) []candidate {
	out := make([]candidate, 0, len(elems))
	for _, elem := range elems {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 {
			continue
		}
		switch elem[0] {
		case '{':
			var book bookObject
			if json.Unmarshal(elem, &book) == nil {
				out = append(out, book.candidate())
			}
		case '"':
			var title string
			if json.Unmarshal(elem, &title) == nil {
				out = append(out, candidate{title: title})
			}
		}
	}
	return out
}

// bookObject is the shape the prompt asks for, plus a couple of common aliases
type bookObject struct {
	Title   flexString `json:"title"`
	Name    flexString `json:"name"`
	Author  flexString `json:"author"`
	Authors flexString `json:"authors"`
	Reason  flexString `json:"reason"`
}

func (b bookObject) candidate() candidate {
	c := candidate{title: string(b.Title), author: string(b.Author), reason: string(b.Reason)}
	if strings.TrimSpace(c.title) == "" {
		c.title = string(b.Name)
	}
	if strings.TrimSpace(c.author) == "" {
		c.author = string(b.Authors)
	}
	return c
}

// flexString accepts a JSON string, number, or array of strings.
// Any other value decodes as the empty string rather than failing the object.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	*f = ""

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		kept := make([]string, 0, len(list))
		for _, item := range list {
			if item = strings.TrimSpace(item); item != "" {
				kept = append(kept, item)
			}
		}
		*f = flexString(strings.Join(kept, ", "))
	}
	return nil
}

// --- tier 2: embedded array --------------------------------------------------

// embeddedArray recovers a JSON array wrapped in prose. It tries the span from the
// first '[' to the last ']', then bracket-balanced spans from successive '['.
func embeddedArray(raw string) []candidate {
	start := strings.IndexByte(raw, '[')
	if start < 0 {
		return nil
	}

	if end := strings.LastIndexByte(raw, ']'); end > start {
		if cands := decodeArray([]byte(raw[start : end+1])); len(cands) > 0 {
			return cands
		}
	}

	for attempt := 0; attempt < maxEmbeddedAttempts && start >= 0; attempt++ {
		if span, ok := balancedSpan(raw, start); ok {
			if cands := decodeArray([]byte(span)); len(cands) > 0 {
				return cands
			}
		}
		next := strings.IndexByte(raw[start+1:], '[')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil
}

// balancedSpan returns raw[start:i+1] where i closes the bracket opened at start.
// Brackets inside JSON strings are ignored.
func balancedSpan(raw string, start int) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

// --- tier 3: line heuristic --------------------------------------------------

var (
	// partialField matches "key": "value" pairs left behind by truncated JSON
	partialField  = regexp.MustCompile(`"(title|name|author|reason)"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	ordinalPrefix = regexp.MustCompile(`^\d{1,3}[.)]\s+`)
	jsonKeyLine   = regexp.MustCompile(`^"[^"]*"\s*:`)
)

// isJSONSyntax reports lines that are JSON structure or key/value pairs, never titles
func isJSONSyntax(line string) bool {
	if line == "" {
		return false
	}
	switch line[0] {
	case '[', ']', '{', '}':
		return true
	}
	return jsonKeyLine.MatchString(line)
}

// edgeDecorations are stripped from both ends of every line
const edgeDecorations = " \t\r-*•·▪►–—\"'`«»“”„#>"

// fieldDecorations are stripped from a split title or author
const fieldDecorations = " \t\"'`«»“”„*_"

// separators split title from author; the earliest occurrence wins
var separators = []string{"—", "–", " - "}

// lineHeuristic salvages fields from broken JSON if it can, else treats
// each meaningful line as one entry.
func lineHeuristic(raw string) []candidate {
	if cands := salvagePartialJSON(raw); len(cands) > 0 {
		return cands
	}

	var out []candidate
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || isJSONSyntax(trimmed) || isGarbled(trimmed) {
			continue
		}
		cleaned := cleanLine(trimmed)
		if cleaned == "" || !hasLetterOrDigit(cleaned) || strings.HasSuffix(cleaned, ":") {
			continue
		}
		out = append(out, splitLine(cleaned))
	}
	return out
}

// salvagePartialJSON groups "title"/"author"/"reason" pairs in document order.
// A new title starts a new entry.
func salvagePartialJSON(raw string) []candidate {
	matches := partialField.FindAllStringSubmatch(raw, -1)
	var out []candidate
	for _, m := range matches {
		value := unquoteJSON(m[2])
		switch m[1] {
		case "title", "name":
			if isGarbled(value) {
				value = ""
			}
			out = append(out, candidate{title: value})
		case "author":
			if len(out) > 0 && out[len(out)-1].author == "" {
				out[len(out)-1].author = value
			}
		case "reason":
			if len(out) > 0 && out[len(out)-1].reason == "" {
				out[len(out)-1].reason = value
			}
		}
	}
	return out
}

func unquoteJSON(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return s
	}
	return out
}

func cleanLine(line string) string {
	line = strings.ReplaceAll(line, "**", "")
	line = strings.Trim(line, edgeDecorations)
	line = ordinalPrefix.ReplaceAllString(line, "")
	return strings.Trim(line, edgeDecorations)
}

// splitLine reads "Title — Author: reason", "Title: reason" or a bare title
func splitLine(line string) candidate {
	if idx, width := findSeparator(line); idx >= 0 {
		c := candidate{title: line[:idx]}
		tail := line[idx+width:]
		if colon := strings.IndexByte(tail, ':'); colon >= 0 {
			c.author, c.reason = tail[:colon], tail[colon+1:]
		} else {
			c.author = tail
		}
		c.title = strings.Trim(c.title, fieldDecorations)
		c.author = strings.Trim(c.author, fieldDecorations)
		return c
	}
	if colon := strings.IndexByte(line, ':'); colon >= 0 {
		return candidate{title: strings.Trim(line[:colon], fieldDecorations), reason: line[colon+1:]}
	}
	return candidate{title: strings.Trim(line, fieldDecorations)}
}

func findSeparator(line string) (int, int) {
	best, width := -1, 0
	for _, sep := range separators {
		if i := strings.Index(line, sep); i >= 0 && (best < 0 || i < best) {
			best, width = i, len(sep)
		}
	}
	return best, width
}

// isGarbled reports invalid UTF-8, replacement runes and control characters other than tab
func isGarbled(s string) bool {
	if !utf8.ValidString(s) {
		return true
	}
	for _, r := range s {
		if r == utf8.RuneError || (unicode.IsControl(r) && r != '\t') {
			return true
		}
	}
	return false
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
