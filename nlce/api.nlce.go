package nlce

const (

	// MaxSites is the max number of lattice sites a State can address.
	MaxSites = 64

	// NoNeighbor marks an unused slot in a Lattice neighbor list.
	NoNeighbor = -1
)

// State is a cluster encoded as a bitmask: bit i is set iff lattice site i is occupied.
type State uint64

// Sign is the running phase carried through symmetry operations (+1 or -1 for fermionic backends).
type Sign int8

// SymmetryBackend maps cluster states under a set of symmetry generators.
//
// Implementations must be safe for concurrent use since every worker of a stage shares the same backend.
type SymmetryBackend interface {

	// NumGenerators returns the number of generators of this group (may be 0).
	NumGenerators() int

	// Period returns the number of applications of generator gen that yields the identity.
	Period(gen int) int

	// MapState applies generator gen once to s, returning the image and updated sign.
	MapState(s State, gen int, sign Sign) (State, Sign)

	// RefState returns the canonical (numerically smallest) representative of the orbit of s.
	// g receives the generator exponents that map s onto the representative and must have len >= NumGenerators().
	RefState(s State, g []int, sign Sign) (State, Sign)
}

// Symmetry bundles the three roles a lattice symmetry group plays during cluster expansion.
type Symmetry struct {
	Full        SymmetryBackend // canonicalizes newly grown clusters
	Point       SymmetryBackend // generators walked when counting an orbit
	Translation SymmetryBackend // reduces each orbit member before it is counted
}

// MaxGenerators returns the largest generator count over all roles, used to size generator scratch.
func (sym Symmetry) MaxGenerators() int {
	N := 0
	for _, B := range []SymmetryBackend{sym.Full, sym.Point, sym.Translation} {
		if B != nil && B.NumGenerators() > N {
			N = B.NumGenerators()
		}
	}
	return N
}

// Lattice is a flat neighbor description of a finite lattice.
//
// Neighbors holds NumNeighbors slots per site (site-major), padded with NoNeighbor.
// Weights is optional and is either per slot (len == NumNeighbors) or per site slot (len == len(Neighbors)).
type Lattice struct {
	NumSites     int
	NumNeighbors int
	Neighbors    []int
	Weights      []int
}

// SiteNeighbors returns the neighbor slots of the given site.
func (L *Lattice) SiteNeighbors(site int) []int {
	i := site * L.NumNeighbors
	return L.Neighbors[i : i+L.NumNeighbors]
}

// IsWeighted returns true if this lattice carries bond weights.
func (L *Lattice) IsWeighted() bool {
	return len(L.Weights) > 0
}

// BondWeight returns the weight of the bond in the given neighbor slot of a site (0 if unweighted).
func (L *Lattice) BondWeight(site, slot int) int {
	switch len(L.Weights) {
	case 0:
		return 0
	case L.NumNeighbors:
		return L.Weights[slot]
	default:
		return L.Weights[site*L.NumNeighbors+slot]
	}
}

// ClusterSet maps a canonical cluster state to its multiplicity (orbit size).
type ClusterSet map[State]int64

// CatalogContext is a container for open / active Catalog instances.
type CatalogContext interface {

	// Attaches the given Catalog to this context.
	AttachCatalog(cat Catalog)

	// Detaches the given Catalog from this context.
	DetachCatalog(cat Catalog)

	// Closes all open catalogs to be closed then closes.
	Close()

	// Signals when Close() completed and all open Catalogs have been closed
	Done() <-chan struct{}
}

// CatalogOpts specifies params for opening a persisted cluster catalog.
type CatalogOpts struct {
	DbPathName string // omit for in-memory db
	ReadOnly   bool   // open in read-only mode
}

// Catalog is a persisted store of cluster levels.
type Catalog interface {

	// Returns true if this catalog was opened for read-only access.
	IsReadOnly() bool

	// NumLevels returns the number of cluster sizes stored (sizes 1..NumLevels).
	NumLevels() int

	Close() error
}
