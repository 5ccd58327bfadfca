package wiki

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Resolver turns the page names people type into canonical page names, applying configured
// aliases and, unless case sensitivity is enabled, capitalising each hyphenated word.
type Resolver struct {
	aliases       map[string]string
	caseSensitive bool
}

// NewResolver builds a resolver from an alias map. Chained aliases are collapsed to their final
// target, and targets are canonicalised, so that resolving a resolved name never changes it.
func NewResolver(aliases map[string]string, caseSensitive bool) (*Resolver, error) {
	r := &Resolver{
		aliases:       make(map[string]string, len(aliases)),
		caseSensitive: caseSensitive,
	}

	raw := make(map[string]string, len(aliases))
	for from, to := range aliases {
		if to == "" {
			return nil, fmt.Errorf("alias %q has no target", from)
		}
		raw[r.key(from)] = to
	}

	for from := range raw {
		target, err := r.follow(raw, from)
		if err != nil {
			return nil, err
		}
		r.aliases[from] = target
	}

	return r, nil
}

// follow walks an alias chain until it reaches a name that isn't itself an alias, or an alias
// that only changes the case of its own name.
func (r *Resolver) follow(raw map[string]string, from string) (string, error) {
	seen := map[string]bool{from: true}
	current := from
	target := r.canonical(raw[from])
	for {
		k := r.key(target)
		if k == current {
			return target, nil
		}
		next, ok := raw[k]
		if !ok {
			return target, nil
		}
		if seen[k] {
			return "", fmt.Errorf("alias loop detected starting at %q", from)
		}
		seen[k] = true
		current = k
		target = r.canonical(next)
	}
}

// Resolve returns the canonical form of a page name. A matching alias is returned as-is;
// otherwise the name is capitalised unless the resolver is case sensitive.
func (r *Resolver) Resolve(name string) string {
	if target, ok := r.aliases[r.key(name)]; ok {
		return target
	}
	return r.canonical(name)
}

// Aliased reports whether name matches a configured alias.
func (r *Resolver) Aliased(name string) bool {
	_, ok := r.aliases[r.key(name)]
	return ok
}

func (r *Resolver) key(name string) string {
	if r.caseSensitive {
		return name
	}
	return strings.ToLower(name)
}

func (r *Resolver) canonical(name string) string {
	if r.caseSensitive {
		return name
	}
	return Capitalize(name)
}

// Capitalize upper-cases the first letter of the name and of every segment following a hyphen,
// so "my-page" becomes "My-Page". Other characters are left alone.
func Capitalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	start := true
	for _, c := range name {
		if start {
			c = unicode.ToUpper(c)
		}
		start = c == '-'
		b.WriteRune(c)
	}
	return b.String()
}

// upperFirst upper-cases just the first character, which is the variant tried when a page
// exists but not under the requested case.
func upperFirst(name string) string {
	c, size := utf8.DecodeRuneInString(name)
	if c == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(c)) + name[size:]
}
