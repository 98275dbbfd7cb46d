package moderation

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Placeholder replaces every redacted occurrence of a banned term.
const Placeholder = "[redacted]"

var (
	nonNormalChars = regexp.MustCompile(`[^a-z0-9\s]`)
	spaceRuns      = regexp.MustCompile(`\s+`)
	leetReplacer   = strings.NewReplacer("o", "0", "i", "1", "e", "3")
)

// Normalize lower-cases text, strips diacritics, replaces anything outside
// [a-z0-9\s] with a space and collapses whitespace.
func Normalize(text string) string {
	// this function needs to be re-defined in every call to prevent a race condition
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	lower := strings.ToLower(text)
	bare, _, err := transform.String(stripMarks, lower)
	if err != nil {
		slog.Warn("unicode normalization error", "err", err)
		bare = lower
	}
	bare = nonNormalChars.ReplaceAllString(bare, " ")
	return strings.TrimSpace(spaceRuns.ReplaceAllString(bare, " "))
}

// Variants returns the seven obfuscation variants of term, in fixed order:
// the term, vowels as '*', vowels as '@', leetspeak, and the term's runes
// joined by a space, a dot and a hyphen.
func Variants(term string) []string {
	chars := strings.Split(term, "")
	return []string{
		term,
		replaceVowels(term, '*'),
		replaceVowels(term, '@'),
		leetReplacer.Replace(term),
		strings.Join(chars, " "),
		strings.Join(chars, "."),
		strings.Join(chars, "-"),
	}
}

func replaceVowels(s string, r rune) string {
	return strings.Map(func(c rune) rune {
		switch c {
		case 'a', 'e', 'i', 'o', 'u':
			return r
		}
		return c
	}, s)
}

// ScanResult is the outcome of scanning one text.
type ScanResult struct {
	Matched bool
	Text    string
}

type variantPattern struct {
	literal string         // lower-case, for the raw substring check
	word    *regexp.Regexp // whole-word match against normalized text
}

type compiledTerm struct {
	term     string
	replace  *regexp.Regexp
	variants []variantPattern
}

// Matcher scans text against a fixed banned-term set. It is immutable once
// built and safe for concurrent use.
type Matcher struct {
	terms []compiledTerm
}

// NewMatcher compiles the patterns for every term up front.
func NewMatcher(terms []string) *Matcher {
	m := &Matcher{terms: make([]compiledTerm, 0, len(terms))}
	for _, term := range terms {
		if term == "" {
			continue
		}
		ct := compiledTerm{
			term:    term,
			replace: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(term)),
		}
		for _, v := range Variants(term) {
			ct.variants = append(ct.variants, variantPattern{
				literal: strings.ToLower(v),
				word:    regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(v) + `\b`),
			})
		}
		m.terms = append(m.terms, ct)
	}
	return m
}

// Len returns the number of terms the matcher checks.
func (m *Matcher) Len() int {
	return len(m.terms)
}

// Scan checks text for every banned term and its variants. For each term that
// is found, all occurrences of the term itself are replaced with Placeholder.
func (m *Matcher) Scan(text string) ScanResult {
	if text == "" {
		return ScanResult{}
	}

	normalized := Normalize(text)
	lowered := strings.ToLower(text)
	redacted := text
	matched := false

	for _, ct := range m.terms {
		if !ct.found(normalized, lowered) {
			continue
		}
		matched = true
		redacted = ct.replace.ReplaceAllLiteralString(redacted, Placeholder)
	}

	return ScanResult{Matched: matched, Text: redacted}
}

func (ct *compiledTerm) found(normalized, lowered string) bool {
	for _, v := range ct.variants {
		if v.word.MatchString(normalized) || strings.Contains(lowered, v.literal) {
			return true
		}
	}
	return false
}
