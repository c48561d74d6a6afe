package nlce

import "errors"

// Errors
var (
	ErrUnmarshal         = errors.New("unmarshal failed")
	ErrBadCatalogParam   = errors.New("bad catalog param")
	ErrCatalogReadOnly   = errors.New("catalog is read-only")
	ErrBadLevel          = errors.New("cluster level out of sequence")
	ErrBadLattice        = errors.New("bad lattice description")
	ErrTooManySites      = errors.New("lattice exceeds max number of sites")
	ErrBadNeighbor       = errors.New("bad neighbor index")
	ErrAsymmetricBond    = errors.New("bond is not listed by both sites")
	ErrBadSymmetry       = errors.New("bad symmetry generator")
	ErrBadBondExpr       = errors.New("bad bond expression")
	ErrIncompleteCatalog = errors.New("subcluster has no matching topological class")
	ErrDuplicateClass    = errors.New("topological classes are isomorphic")
	ErrDisconnected      = errors.New("cluster is not connected")
	ErrDanglingSubclass  = errors.New("subcluster count refers to an unknown class")
)
