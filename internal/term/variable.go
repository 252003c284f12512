package term

// Variable is an interned symbol matching (_[a-zA-Z_0-9]|[A-Z])[a-zA-Z_0-9]*.
// Anonymous variables are represented separately by Anonymous, never by a
// Variable, so two Variable values with the same entry are always the same
// occurrence-class within the compilation unit that produced them.
type Variable struct {
	e *entry
}

// NewVariable interns name and returns the Variable handle for it. Two
// clauses calling NewVariable with the same name get Variables that
// compare equal; callers that need per-clause scoping (as the flattener
// does) must track that boundary themselves, since the interner is
// process-wide.
func NewVariable(name string) Variable {
	return Variable{e: vars.intern(name)}
}

// Name returns the variable's source name.
func (v Variable) Name() string {
	if v.e == nil {
		return ""
	}
	return v.e.text
}

// Equal reports whether v and w are the same interned variable.
func (v Variable) Equal(w Variable) bool {
	return v.e == w.e
}

func (Variable) isTerm() {}

// String returns the Prolog source representation of v, which is simply
// its name.
func (v Variable) String() string {
	return v.Name()
}

// Anonymous is the wildcard term "_". Distinct occurrences of Anonymous
// are never considered equal to one another, unlike Variable.
type Anonymous struct{}

func (Anonymous) isTerm() {}

// String returns "_".
func (Anonymous) String() string {
	return "_"
}
