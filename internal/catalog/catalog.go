// Package catalog resolves free-form game names against a list of known games.
package catalog

import (
	"bufio"
	"errors"
	"os"
	"sort"
	"strings"
)

// Catalog is a list of canonical game names.
type Catalog struct {
	names []string
}

// New builds a catalog from names, dropping blanks and duplicates.
func New(names []string) *Catalog {
	c := &Catalog{}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		c.names = append(c.names, name)
	}
	return c
}

// Load reads one game name per line. Blank lines and lines starting with #
// are skipped. A missing file yields an empty catalog.
func Load(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(nil), nil
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only catalog.
			_ = cerr
		}
	}()

	var names []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return New(names), nil
}

// Len returns the number of games.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Names returns the games sorted alphabetically.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	out := append([]string(nil), c.names...)
	sort.Strings(out)
	return out
}

// Resolve returns the canonical spelling of name, or name itself (trimmed)
// when the catalog has no match.
func (c *Catalog) Resolve(name string) string {
	name = strings.TrimSpace(name)
	if c == nil {
		return name
	}
	if match, ok := Match(name, c.names, false); ok {
		return match
	}
	return name
}

// Match finds name among candidates: exact, then case-insensitive, then by
// normalized form. With partial set, a single candidate whose normalized
// form contains (or is contained in) the normalized name also matches.
func Match(name string, candidates []string, partial bool) (string, bool) {
	for _, c := range candidates {
		if c == name {
			return c, true
		}
	}
	trimmed := strings.TrimSpace(name)
	for _, c := range candidates {
		if strings.EqualFold(strings.TrimSpace(c), trimmed) {
			return c, true
		}
	}
	want := Normalize(name)
	if want == "" {
		return "", false
	}
	for _, c := range candidates {
		if Normalize(c) == want {
			return c, true
		}
	}
	if !partial {
		return "", false
	}
	found := ""
	for _, c := range candidates {
		got := Normalize(c)
		if got == "" || !(strings.Contains(got, want) || strings.Contains(want, got)) {
			continue
		}
		if found != "" {
			return "", false
		}
		found = c
	}
	return found, found != ""
}

var punctuation = strings.NewReplacer(
	".", " ",
	":", " ",
	"«", " ",
	"»", " ",
	`"`, " ",
	"'", " ",
	",", " ",
	"-", " ",
	"ё", "е",
)

// Normalize lower-cases name, turns punctuation into spaces, collapses
// whitespace and folds ё into е.
func Normalize(name string) string {
	return strings.Join(strings.Fields(punctuation.Replace(strings.ToLower(name))), " ")
}
