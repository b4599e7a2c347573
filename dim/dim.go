package dim

import "sort"

// Dim is one dimension of a tensor shape, or a value participating in
// dimension arithmetic: a polynomial expression over named integer
// variables, plus a set of equality constraints accumulated by CheckEq.
//
// Dim is an immutable value type. Every operator (Add, Sub, Mul, Div,
// CheckEq, ...) returns a new Dim; none mutate a receiver in place, so a Dim
// can be freely copied, stored in a shape slice, and shared across tensors.
type Dim struct {
	e           expr
	constraints []expr
}

// Var constructs a Dim that is exactly the named free variable.
func Var(name string) Dim {
	return Dim{e: exprVar(name)}
}

// Const constructs a constant Dim.
func Const(v uint64) Dim {
	return Dim{e: exprConst(int64(v))}
}

// Zero is the constant 0, useful as a fold seed.
func Zero() Dim { return Const(0) }

// One is the constant 1, useful as a fold seed for products.
func One() Dim { return Const(1) }

func (d Dim) withExpr(e expr) Dim {
	// Arithmetic results start a fresh constraint set: constraints are
	// properties of a specific dimension occurrence (recorded by CheckEq
	// at the point two dimensions are unified), not of the algebraic value
	// in the abstract, matching the source's Add/Sub/Mul/Div impls which
	// all return Self { expr, eq_constraints: vec![] }.
	return Dim{e: e}
}

// Add returns d + other.
func (d Dim) Add(other Dim) Dim { return d.withExpr(d.e.add(other.e)) }

// Sub returns d - other.
func (d Dim) Sub(other Dim) Dim { return d.withExpr(d.e.sub(other.e)) }

// Mul returns d * other.
func (d Dim) Mul(other Dim) Dim { return d.withExpr(d.e.mul(other.e)) }

// Div returns d / other. It panics if other does not divide d exactly as
// polynomials — this mirrors the source's contract, where division by a
// non-divisor is a programmer error, not a recoverable condition.
func (d Dim) Div(other Dim) Dim { return d.withExpr(d.e.div(other.e)) }

// AddU, SubU, MulU, DivU are convenience wrappers for arithmetic against a
// plain constant, avoiding an explicit Const(...) at every call site.
func (d Dim) AddU(c uint64) Dim { return d.Add(Const(c)) }
func (d Dim) SubU(c uint64) Dim { return d.Sub(Const(c)) }
func (d Dim) MulU(c uint64) Dim { return d.Mul(Const(c)) }
func (d Dim) DivU(c uint64) Dim { return d.Div(Const(c)) }

// AppendVariables adds every free variable name occurring in d to set.
func (d Dim) AppendVariables(set map[string]struct{}) { d.e.appendVariables(set) }

// Variables returns the sorted set of free variable names occurring in d.
func (d Dim) Variables() []string {
	set := map[string]struct{}{}
	d.AppendVariables(set)
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Substitute evaluates d under a complete variable binding. It returns
// (value, true) if every attached equality constraint evaluates to zero
// under the binding; (0, false) if the binding is complete but some
// constraint is violated (the constraint set is inconsistent with this
// binding — not a fatal condition, just "no value here"). A binding missing
// a free variable is a fatal usage error and returns a non-nil error.
func (d Dim) Substitute(binding map[string]uint64) (uint64, bool, error) {
	for _, c := range d.constraints {
		v, err := c.substitute(binding)
		if err != nil {
			return 0, false, err
		}
		if v != 0 {
			return 0, false, nil
		}
	}
	v, err := d.e.substitute(binding)
	if err != nil {
		return 0, false, err
	}
	if v < 0 {
		return 0, false, nil
	}
	return uint64(v), true, nil
}

// ToUsize returns the concrete value of a Dim that is already a bare
// constant (no free variables, no constraints to check). It is used for
// Dims produced purely by constant folding, e.g. literal shape sizes coming
// out of Arg. It returns ErrNotConstant if d still carries variables.
func (d Dim) ToUsize() (uint64, error) {
	c, ok := d.e.asConstant()
	if !ok {
		return 0, ErrNotConstant
	}
	if c < 0 {
		return 0, ErrNotConstant
	}
	return uint64(c), nil
}

// IsConstant reports whether d has no free variables.
func (d Dim) IsConstant() bool {
	_, ok := d.e.asConstant()
	return ok
}

// Equal is structural equality of canonical form: two Dims are Equal when
// their polynomial expressions are identical after normalization. This is
// NOT semantic equivalence under substitution — two constraint-laden Dims
// that always evaluate the same but were derived differently compare
// unequal here. Attached constraints never participate in equality.
func (d Dim) Equal(other Dim) bool { return d.e.equal(other.e) }

// CheckEq unifies d with other: if their canonical forms already agree, it
// returns d unchanged (truly nothing to record). Otherwise it returns a new
// Dim equal to d but carrying an additional deferred equality constraint
// "d - other == 0", to be checked the next time this Dim is substituted.
//
// This always succeeds — CheckEq never reports that two dimensions cannot
// be unified at this point; any disagreement is only detected later, at
// Substitute time, against a concrete binding. (The source's Dim::check_eq
// has an unreachable `self.expr != other.expr` branch; the intent recovered
// here is that disagreement is never rejected immediately, only deferred.)
func (d Dim) CheckEq(other Dim) Dim {
	if d.e.equal(other.e) {
		return d
	}
	out := Dim{e: d.e, constraints: append(append([]expr{}, d.constraints...), d.e.sub(other.e))}
	return out
}

// MakeEq unifies every Dim in ds with the first, returning a single Dim
// whose value at substitution time equals all of them (and fails the
// constraint check at substitution time if they disagree). It returns
// (Dim{}, false) for an empty slice.
func MakeEq(ds []Dim) (Dim, bool) {
	if len(ds) == 0 {
		return Dim{}, false
	}
	acc := ds[0]
	for _, d := range ds[1:] {
		acc = acc.CheckEq(d)
	}
	return acc, true
}

// SumAll folds + over ds starting from Zero().
func SumAll(ds []Dim) Dim {
	acc := Zero()
	for _, d := range ds {
		acc = acc.Add(d)
	}
	return acc
}

// ProductAll folds * over ds starting from One().
func ProductAll(ds []Dim) Dim {
	acc := One()
	for _, d := range ds {
		acc = acc.Mul(d)
	}
	return acc
}

func (d Dim) String() string { return d.e.String() }
