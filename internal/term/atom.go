package term

import "strings"

// Atom is an interned, immutable symbol naming a functor or a nullary
// constant. The zero value is not a valid Atom; use NewAtom.
type Atom struct {
	e *entry
}

// NewAtom interns text and returns the Atom handle for it. Calling NewAtom
// twice with the same text returns Atoms that compare equal.
func NewAtom(text string) Atom {
	return Atom{e: atoms.intern(text)}
}

// Text returns the atom's underlying, unescaped text.
func (a Atom) Text() string {
	if a.e == nil {
		return ""
	}
	return a.e.text
}

// Equal reports whether a and b are the same interned atom.
func (a Atom) Equal(b Atom) bool {
	return a.e == b.e
}

func (Atom) isTerm() {}

// String returns the Prolog source representation of a, quoting and
// escaping it if its text isn't a bare unquoted atom.
func (a Atom) String() string {
	text := a.Text()
	if !needsAtomQuotes(text) {
		return text
	}
	return "'" + atomEscaper.Replace(text) + "'"
}

// needsAtomQuotes reports whether text fails the unquoted-atom grammar
// [a-z0-9][a-zA-Z_0-9]*.
func needsAtomQuotes(text string) bool {
	if len(text) == 0 {
		return true
	}
	for i, r := range text {
		switch {
		case i == 0:
			if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
				return true
			}
		default:
			if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
				return true
			}
		}
	}
	return false
}

var atomEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\t", `\t`,
)
