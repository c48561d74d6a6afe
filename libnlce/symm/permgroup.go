package symm

import (
	"math/bits"

	"github.com/2x3systems/nlce/nlce"
	"github.com/pkg/errors"
)

// PermGroup is a SymmetryBackend whose generators are permutations of lattice sites.
//
// Signs pass through unchanged.
type PermGroup struct {
	numSites int
	perms    [][]int
	periods  []int
}

// NewPermGroup returns the group generated by the given site permutations, where perm[i] is the image of site i.
func NewPermGroup(numSites int, gens ...[]int) (*PermGroup, error) {
	if numSites < 0 || numSites > nlce.MaxSites {
		return nil, errors.Wrapf(nlce.ErrTooManySites, "%d sites", numSites)
	}

	pg := &PermGroup{
		numSites: numSites,
		perms:    make([][]int, 0, len(gens)),
		periods:  make([]int, 0, len(gens)),
	}
	for gi, perm := range gens {
		if err := checkPerm(numSites, perm); err != nil {
			return nil, errors.Wrapf(err, "generator %d", gi)
		}
		pg.perms = append(pg.perms, append([]int(nil), perm...))
		pg.periods = append(pg.periods, permPeriod(perm))
	}
	return pg, nil
}

// MustPermGroup is NewPermGroup that panics on a malformed generator.
func MustPermGroup(numSites int, gens ...[]int) *PermGroup {
	pg, err := NewPermGroup(numSites, gens...)
	if err != nil {
		panic(err)
	}
	return pg
}

// Identity returns the trivial group: a single identity generator with period 1.
func Identity(numSites int) *PermGroup {
	perm := make([]int, numSites)
	for i := range perm {
		perm[i] = i
	}
	return MustPermGroup(numSites, perm)
}

// None returns a group with no generators.
func None(numSites int) *PermGroup {
	return MustPermGroup(numSites)
}

func checkPerm(numSites int, perm []int) error {
	if len(perm) != numSites {
		return nlce.ErrBadSymmetry
	}
	var seen nlce.State
	for _, j := range perm {
		if j < 0 || j >= numSites || seen.Has(j) {
			return nlce.ErrBadSymmetry
		}
		seen = seen.With(j)
	}
	return nil
}

func permPeriod(perm []int) int {
	cur := append([]int(nil), perm...)
	for per := 1; ; per++ {
		isIdentity := true
		for i, j := range cur {
			if i != j {
				isIdentity = false
				break
			}
		}
		if isIdentity {
			return per
		}
		for i := range cur {
			cur[i] = perm[cur[i]]
		}
	}
}

func (pg *PermGroup) NumSites() int {
	return pg.numSites
}

func (pg *PermGroup) NumGenerators() int {
	return len(pg.perms)
}

func (pg *PermGroup) Period(gen int) int {
	return pg.periods[gen]
}

func (pg *PermGroup) MapState(s nlce.State, gen int, sign nlce.Sign) (nlce.State, nlce.Sign) {
	perm := pg.perms[gen]
	var out nlce.State
	for b := uint64(s); b != 0; b &= b - 1 {
		out |= nlce.SiteState(perm[bits.TrailingZeros64(b)])
	}
	return out, sign
}

// RefState returns the smallest image of s over all products g[n-1]^e ... g[0]^e of generator powers.
func (pg *PermGroup) RefState(s nlce.State, g []int, sign nlce.Sign) (nlce.State, nlce.Sign) {
	nt := len(pg.perms)
	if nt == 0 {
		return s, sign
	}

	var scrap [16]int
	exps := scrap[:0]
	if nt > len(scrap) {
		exps = make([]int, 0, nt)
	}
	ref := refSearch{
		pg:   pg,
		best: s,
		g:    g[:nt],
		exps: exps[:nt],
	}
	for i := range ref.g {
		ref.g[i] = 0
	}
	ref.descend(s, 0)
	return ref.best, sign
}

type refSearch struct {
	pg   *PermGroup
	best nlce.State
	g    []int
	exps []int
}

func (ref *refSearch) descend(s nlce.State, gen int) {
	if gen == len(ref.exps) {
		if s < ref.best {
			ref.best = s
			copy(ref.g, ref.exps)
		}
		return
	}
	per := ref.pg.periods[gen]
	for e := 0; e < per; e++ {
		ref.exps[gen] = e
		ref.descend(s, gen+1)
		s, _ = ref.pg.MapState(s, gen, 1)
	}
}
