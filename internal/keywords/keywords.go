package keywords

import (
	"html"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

var urlRegex = regexp.MustCompile(`https?://[^\s]+`)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	markup      = regexp.MustCompile(`<[a-zA-Z!/][^>]*>`)
)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "nor": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"about": {}, "above": {}, "after": {}, "again": {}, "against": {}, "also": {},
	"among": {}, "been": {}, "before": {}, "being": {}, "below": {}, "between": {},
	"both": {}, "could": {}, "does": {}, "doing": {}, "down": {}, "during": {},
	"each": {}, "from": {}, "further": {}, "have": {}, "having": {}, "here": {},
	"into": {}, "just": {}, "like": {}, "many": {}, "more": {}, "most": {}, "much": {},
	"must": {}, "only": {}, "other": {}, "ours": {}, "over": {}, "said": {}, "says": {},
	"same": {}, "should": {}, "some": {}, "such": {}, "than": {}, "that": {}, "their": {},
	"them": {}, "then": {}, "there": {}, "these": {}, "they": {}, "this": {}, "those": {},
	"through": {}, "under": {}, "until": {}, "very": {}, "were": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "while": {}, "will": {}, "within": {},
	"without": {}, "would": {}, "your": {}, "yours": {}, "because": {}, "whose": {},
}

// RemoveURLs removes all URLs from the input text.
func RemoveURLs(input string) string {
	return urlRegex.ReplaceAllString(input, " ")
}

// StripMarkup reduces HTML input to its visible text. Plain text is returned as is.
func StripMarkup(input string) string {
	if !markup.MatchString(input) {
		return input
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return input
	}

	var b strings.Builder
	collectText(doc.Selection, &b)
	return b.String()
}

func collectText(s *goquery.Selection, b *strings.Builder) {
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		switch goquery.NodeName(child) {
		case "#text":
			b.WriteString(child.Text())
			b.WriteByte(' ')
		case "script", "style", "noscript", "#comment":
		default:
			collectText(child, b)
		}
	})
}

// CleanText strips markup, HTML entities, URLs and punctuation, and squeezes whitespace.
func CleanText(input string) string {
	if input == "" {
		return ""
	}
	decoded := html.UnescapeString(StripMarkup(input))
	decoded = RemoveURLs(decoded)
	decoded = punctuation.ReplaceAllString(decoded, " ")
	decoded = whitespace.ReplaceAllString(decoded, " ")
	return strings.TrimSpace(decoded)
}

// Extract returns up to limit salient words of text, most frequent first.
// Words are compared case-insensitively; the first spelling seen is kept and
// ties keep the order in which words first appear.
func Extract(text string, limit, minLen int) []string {
	clean := CleanText(text)
	if clean == "" {
		return nil
	}

	type candidate struct {
		word  string
		count int
	}

	index := make(map[string]int)
	candidates := make([]candidate, 0, 16)
	for _, token := range strings.Fields(clean) {
		if utf8.RuneCountInString(token) < minLen || !hasLetter(token) {
			continue
		}
		key := strings.ToLower(token)
		if _, skip := stopwords[key]; skip {
			continue
		}
		if i, ok := index[key]; ok {
			candidates[i].count++
			continue
		}
		index[key] = len(candidates)
		candidates = append(candidates, candidate{word: token, count: 1})
	}

	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].count > candidates[j].count
	})

	max := limit
	if max <= 0 || max > len(candidates) {
		max = len(candidates)
	}

	out := make([]string, 0, max)
	for i := 0; i < max; i++ {
		out = append(out, candidates[i].word)
	}
	return out
}

func hasLetter(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
