// Package dim implements the symbolic dimension algebra of layer A: polynomial
// expressions over named integer variables, equality constraints, and
// substitution to concrete sizes.
//
// Expressions are kept in canonical polynomial form at all times: a sum of
// terms, each term a signed integer coefficient times a product of variable
// powers. Every arithmetic operator rebuilds a fresh canonical expr; nothing
// is ever mutated in place, so a Dim can be freely shared and cloned like any
// other Go value.
package dim

import (
	"fmt"
	"sort"
	"strings"
)

// monomial is a canonical product of variable powers, e.g. {"n": 1, "d": 2}.
// An empty monomial represents the constant 1.
type monomial map[string]int

// key renders the monomial as a stable, comparable string: sorted
// "name^power" pairs joined by "*". Two structurally equal monomials always
// produce the same key, which is what lets term maps merge like terms.
func (m monomial) key() string {
	if len(m) == 0 {
		return ""
	}
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s^%d", n, m[n])
	}
	return strings.Join(parts, "*")
}

func (m monomial) degree() int {
	d := 0
	for _, p := range m {
		d += p
	}
	return d
}

func (m monomial) clone() monomial {
	c := make(monomial, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func (m monomial) mul(o monomial) monomial {
	c := m.clone()
	for k, v := range o {
		c[k] += v
	}
	return c
}

// divides reports whether m is a multiple of o (every power in o is <=
// the matching power in m), returning the quotient monomial.
func (m monomial) divides(o monomial) (monomial, bool) {
	q := make(monomial, len(m))
	for k, v := range m {
		q[k] = v
	}
	for k, v := range o {
		have := q[k]
		if have < v {
			return nil, false
		}
		have -= v
		if have == 0 {
			delete(q, k)
		} else {
			q[k] = have
		}
	}
	return q, true
}

// term is coeff * monomial.
type term struct {
	coeff int64
	pow   monomial
}

// expr is a canonical polynomial: the zero-value is the constant 0.
type expr struct {
	// terms is keyed by monomial.key() so that like terms always collide.
	terms map[string]term
}

func exprConst(c int64) expr {
	e := expr{terms: map[string]term{}}
	if c != 0 {
		e.terms[""] = term{coeff: c, pow: monomial{}}
	}
	return e
}

func exprVar(name string) expr {
	return expr{terms: map[string]term{
		monomial{name: 1}.key(): {coeff: 1, pow: monomial{name: 1}},
	}}
}

func (e expr) clone() expr {
	c := make(map[string]term, len(e.terms))
	for k, t := range e.terms {
		c[k] = term{coeff: t.coeff, pow: t.pow.clone()}
	}
	return expr{terms: c}
}

// normalize drops zero-coefficient terms, keeping the map canonical.
func (e expr) normalize() expr {
	out := make(map[string]term, len(e.terms))
	for k, t := range e.terms {
		if t.coeff != 0 {
			out[k] = t
		}
	}
	return expr{terms: out}
}

func (e expr) add(o expr) expr {
	out := e.clone()
	for k, t := range o.terms {
		if cur, ok := out.terms[k]; ok {
			out.terms[k] = term{coeff: cur.coeff + t.coeff, pow: cur.pow}
		} else {
			out.terms[k] = term{coeff: t.coeff, pow: t.pow.clone()}
		}
	}
	return out.normalize()
}

func (e expr) neg() expr {
	out := make(map[string]term, len(e.terms))
	for k, t := range e.terms {
		out[k] = term{coeff: -t.coeff, pow: t.pow}
	}
	return expr{terms: out}
}

func (e expr) sub(o expr) expr {
	return e.add(o.neg())
}

func (e expr) mul(o expr) expr {
	out := map[string]term{}
	for _, a := range e.terms {
		for _, b := range o.terms {
			pm := a.pow.mul(b.pow)
			k := pm.key()
			coeff := a.coeff * b.coeff
			if cur, ok := out[k]; ok {
				out[k] = term{coeff: cur.coeff + coeff, pow: pm}
			} else {
				out[k] = term{coeff: coeff, pow: pm}
			}
		}
	}
	return expr{terms: out}.normalize()
}

// leading returns the term under a deterministic monomial order: highest
// total degree first, then lexicographically smallest set of variable names.
// It is used only to drive polynomial long division; the order does not need
// to be a "real" term order beyond being well-founded on this polynomial's
// own finite term set.
func (e expr) leading() (term, bool) {
	var best term
	var bestKey string
	found := false
	for k, t := range e.terms {
		if t.coeff == 0 {
			continue
		}
		if !found {
			best, bestKey, found = t, k, true
			continue
		}
		if t.pow.degree() > best.pow.degree() ||
			(t.pow.degree() == best.pow.degree() && k < bestKey) {
			best, bestKey = t, k
		}
	}
	return best, found
}

func (e expr) isZero() bool {
	for _, t := range e.terms {
		if t.coeff != 0 {
			return false
		}
	}
	return true
}

// div performs exact multivariate polynomial long division: e / o. It
// repeatedly eliminates the leading term of the remainder using the leading
// term of the divisor. If at any point the divisor's leading term does not
// divide the remainder's leading term (in both coefficient and every
// variable power), the divisor does not divide e exactly and div panics —
// per the algebra's contract, division by a non-divisor polynomial is a
// programmer error, not a runtime-recoverable one.
func (e expr) div(o expr) expr {
	lead, ok := o.leading()
	if !ok {
		panic("dim: division by zero expression")
	}
	remainder := e.clone()
	quotient := exprConst(0)
	const maxSteps = 1 << 16
	for step := 0; ; step++ {
		if remainder.isZero() {
			return quotient
		}
		if step > maxSteps {
			panic("dim: polynomial division did not terminate (divisor does not divide dividend)")
		}
		rLead, ok := remainder.leading()
		if !ok {
			return quotient
		}
		powQ, divides := rLead.pow.divides(lead.pow)
		if !divides || lead.coeff == 0 || rLead.coeff%lead.coeff != 0 {
			panic("dim: divisor does not divide dividend exactly")
		}
		factor := term{coeff: rLead.coeff / lead.coeff, pow: powQ}
		factorExpr := expr{terms: map[string]term{powQ.key(): factor}}
		quotient = quotient.add(factorExpr)
		remainder = remainder.sub(factorExpr.mul(o))
	}
}

func (e expr) substitute(binding map[string]uint64) (int64, error) {
	var total int64
	for _, t := range e.terms {
		v := t.coeff
		for name, pow := range t.pow {
			val, ok := binding[name]
			if !ok {
				return 0, fmt.Errorf("%w: %q", ErrMissingVariable, name)
			}
			for i := 0; i < pow; i++ {
				v *= int64(val)
			}
		}
		total += v
	}
	return total, nil
}

func (e expr) appendVariables(set map[string]struct{}) {
	for _, t := range e.terms {
		for name := range t.pow {
			set[name] = struct{}{}
		}
	}
}

// equal is structural equality of canonical form, not semantic equivalence:
// two expressions that always evaluate the same but are built differently
// (e.g. via different constraint histories) are still compared purely on
// their normalized term maps.
func (e expr) equal(o expr) bool {
	en, on := e.normalize(), o.normalize()
	if len(en.terms) != len(on.terms) {
		return false
	}
	for k, t := range en.terms {
		ot, ok := on.terms[k]
		if !ok || ot.coeff != t.coeff {
			return false
		}
	}
	return true
}

func (e expr) asConstant() (int64, bool) {
	if len(e.terms) == 0 {
		return 0, true
	}
	if len(e.terms) == 1 {
		for _, t := range e.terms {
			if len(t.pow) == 0 {
				return t.coeff, true
			}
		}
	}
	return 0, false
}

func (e expr) String() string {
	if len(e.terms) == 0 {
		return "0"
	}
	keys := make([]string, 0, len(e.terms))
	for k := range e.terms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		t := e.terms[k]
		if len(t.pow) == 0 {
			parts = append(parts, fmt.Sprintf("%d", t.coeff))
			continue
		}
		names := make([]string, 0, len(t.pow))
		for n := range t.pow {
			names = append(names, n)
		}
		sort.Strings(names)
		var b strings.Builder
		fmt.Fprintf(&b, "%d", t.coeff)
		for _, n := range names {
			if t.pow[n] == 1 {
				fmt.Fprintf(&b, "*%s", n)
			} else {
				fmt.Fprintf(&b, "*%s^%d", n, t.pow[n])
			}
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, " + ")
}
