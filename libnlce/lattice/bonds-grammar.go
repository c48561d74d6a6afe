package lattice

import (
	"github.com/2x3systems/nlce/nlce"
	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"
)

// BondsExpr is a list of bond runs separated by commas or spaces, e.g. "0-1-2-3-0, 1-3:2".
//
// A run "a-b-c" lists bonds a-b and b-c; ":w" after a site weights the bond that ends there.
type BondsExpr struct {
	Runs []*BondRun `(@@ ","?)*`
}

type BondRun struct {
	Start int        `@Int`
	Bonds []*BondDst `@@+`
}

type BondDst struct {
	End    int         `"-" @Int`
	Weight *BondWeight `@@?`
}

type BondWeight struct {
	Value int `":" @Int`
}

var parseBondsExpr = participle.MustBuild[BondsExpr]()

// ParseBonds parses a bond expression into a Lattice whose site count is one past the largest site index.
func ParseBonds(bondsExpr string) (*nlce.Lattice, error) {
	expr, err := parseBondsExpr.ParseString("", bondsExpr)
	if err != nil {
		return nil, errors.Wrap(nlce.ErrBadBondExpr, err.Error())
	}

	var bonds []Bond
	numSites := 0
	tally := func(site int) {
		if site+1 > numSites {
			numSites = site + 1
		}
	}

	for _, run := range expr.Runs {
		on := run.Start
		tally(on)
		for _, dst := range run.Bonds {
			tally(dst.End)
			b := Bond{A: on, B: dst.End}
			if dst.Weight != nil {
				b.Weight = dst.Weight.Value
			}
			bonds = append(bonds, b)
			on = dst.End
		}
	}

	if numSites == 0 {
		return nil, errors.Wrap(nlce.ErrBadBondExpr, "no bonds")
	}
	return FromBonds(numSites, bonds)
}
