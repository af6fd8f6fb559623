package matching

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"
)

var defaultSkills = []string{
	"python", "java", "c++", "c#", "javascript", "typescript", "react", "angular", "vue",
	"node.js", "django", "flask", "spring", "sql", "mysql", "postgresql", "mongodb",
	"aws", "azure", "gcp", "docker", "kubernetes", "git", "linux", "html", "css",
	"machine learning", "deep learning", "nlp", "tensorflow", "pytorch", "pandas", "numpy",
	"scikit-learn", "data analysis", "project management", "agile", "scrum", "leadership",
	"communication", "problem solving",
}

// A term boundary is the edge of the text or any rune that is not a letter, digit or underscore.
// Checking the surrounding rune instead of using \b keeps terms like "c++" and "node.js" matchable.
const (
	boundaryBefore = `(?:^|[^\p{L}\p{N}_])`
	boundaryAfter  = `(?:$|[^\p{L}\p{N}_])`
)

// Lexicon is an immutable set of skill terms with precompiled matchers
type Lexicon struct {
	terms    []string
	patterns []*regexp.Regexp
}

// DefaultLexicon returns the built-in skill lexicon
func DefaultLexicon() *Lexicon {
	lex, err := NewLexicon(defaultSkills)
	if err != nil {
		panic(fmt.Sprintf("default lexicon is invalid: %v", err))
	}
	return lex
}

// NewLexicon builds a lexicon from terms. Terms are lowercased, trimmed and de-duplicated.
func NewLexicon(terms []string) (*Lexicon, error) {
	seen := make(map[string]bool, len(terms))
	lex := &Lexicon{}
	for _, raw := range terms {
		term := strings.ToLower(strings.TrimSpace(raw))
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true

		re, err := regexp.Compile(termPattern(term))
		if err != nil {
			return nil, fmt.Errorf("skill term %q: %w", term, err)
		}
		lex.terms = append(lex.terms, term)
		lex.patterns = append(lex.patterns, re)
	}
	if len(lex.terms) == 0 {
		return nil, fmt.Errorf("skill lexicon is empty")
	}
	return lex, nil
}

// termPattern matches term literally. Inner whitespace matches any whitespace run
// so multi-word skills survive line wrapping in extracted documents.
func termPattern(term string) string {
	words := strings.Fields(term)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return boundaryBefore + strings.Join(words, `\s+`) + boundaryAfter
}

// ReadLexicon parses one term per line. Blank lines and lines starting with '#' are skipped.
func ReadLexicon(r io.Reader) (*Lexicon, error) {
	var terms []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		terms = append(terms, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read skill lexicon: %w", err)
	}
	return NewLexicon(terms)
}

// LoadLexiconFile reads a lexicon file from disk
func LoadLexiconFile(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open skill lexicon %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return ReadLexicon(f)
}

// Terms returns a copy of the lexicon terms in load order
func (l *Lexicon) Terms() []string {
	return slices.Clone(l.terms)
}

// Len returns the number of terms
func (l *Lexicon) Len() int {
	return len(l.terms)
}

// ExtractSkills returns the lexicon terms found in text as case-insensitive whole words
func (l *Lexicon) ExtractSkills(text string) SkillSet {
	found := make(SkillSet)
	if strings.TrimSpace(text) == "" {
		return found
	}
	lowered := strings.ToLower(text)
	for i, re := range l.patterns {
		if re.MatchString(lowered) {
			found[l.terms[i]] = struct{}{}
		}
	}
	return found
}
