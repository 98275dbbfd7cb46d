package moderation

import "strings"

var spanishTerms = []string{
	// general
	"hijo de puta", "hija de puta", "hijueputa", "hijadeputa",
	"pendejo", "pendeja", "cabrón", "cabrona", "cabron",
	"idiota", "imbécil", "imbecil", "estúpido", "estupido",
	"tonto", "tonta", "bobo", "boba", "tarado", "tarada",

	// insults
	"mierda", "caca", "carajo", "coño", "joder",
	"puto", "puta", "putita", "putito",
	"marica", "maricón", "maricon", "gay", "homosexual",

	// regional
	"boludo", "boluda", "pelotudo", "pelotuda", "gilipollas", "capullo",
	"mamón", "mamona", "culero", "culera", "verga", "pija", "polla",

	// family
	"tu madre", "tu mamá", "tu papa", "tu vieja",
	"la concha de tu madre", "concha tu madre",

	// discrimination
	"negro de mierda", "indio de mierda", "cholo", "serrano", "provinciano", "ignorante",

	// contempt
	"rata", "basura", "escoria", "lacra", "parasito", "parásito", "inútil", "util",
}

// "hell" is left out: the raw substring check would redact "hello" and "shell".
var englishTerms = []string{
	"fuck", "fucking", "shit", "bitch", "asshole", "damn", "crap",
	"bastard", "dickhead", "motherfucker", "son of a bitch", "piece of shit",
}

var quechuaTerms = []string{"qhawa", "qhawana", "uma", "qhata"}

// DefaultTerms returns a fresh copy of the built-in banned terms.
func DefaultTerms() []string {
	out := make([]string, 0, len(spanishTerms)+len(englishTerms)+len(quechuaTerms))
	out = append(out, spanishTerms...)
	out = append(out, englishTerms...)
	out = append(out, quechuaTerms...)
	return out
}

// BuildTerms lower-cases, trims and de-duplicates the given term lists,
// keeping first-seen order.
func BuildTerms(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, t := range list {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// ParseTermList splits a comma-separated term list such as EXTRA_BANNED_TERMS.
func ParseTermList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}
