package catalog

import (
	"runtime"
	"sync"

	"github.com/2x3systems/nlce/libnlce/expand"
	"github.com/2x3systems/nlce/nlce"
	"github.com/dgraph-io/badger/v3"
	"github.com/gogo/protobuf/proto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

/***

Catalog database format:

	gCatalogStateKey => CatalogState

	kClusterKey, size, State (big-endian uint64)    => multiplicity (varint)
	...

	kTopoKey, size, State                           => multiplicity, bond graph
	...

	kSubclusterKey, size, State                     => [(State, count)]
	...

Every record of a given size shares a two byte prefix so a level loads with one prefix scan per kind,
and records within a level are ordered by State.

***/

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
)

const (
	kClusterKey    byte = 0x10
	kTopoKey       byte = 0x20
	kSubclusterKey byte = 0x30
)

const (
	kMajorVers = 2026
	kMinorVers = 1
)

// Store is a badger db of cluster levels.
type Store struct {
	mu         sync.Mutex
	ctx        nlce.CatalogContext
	readOnly   bool
	stateDirty bool
	state      CatalogState
	db         *badger.DB
}

// OpenCatalog opens (or creates) the catalog at opts.DbPathName, or an in-memory catalog if no path is given.
func OpenCatalog(ctx nlce.CatalogContext, opts nlce.CatalogOpts) (*Store, error) {
	cat := &Store{
		ctx:      ctx,
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(nlce.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts = dbOpts.WithInMemory(true)
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening catalog %q", opts.DbPathName)
	}

	// Once the db is open, we consider the catalog ctx blocked until the catalog closes
	ctx.AttachCatalog(cat)

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		if cat.readOnly {
			err = errors.Wrap(nlce.ErrBadCatalogParam, "read-only catalog has no state")
		} else {
			err = nil
			cat.stateDirty = true
			cat.state = CatalogState{
				MajorVers: kMajorVers,
				MinorVers: kMinorVers,
				RunID:     uuid.New().String(),
			}
		}
	}

	if err == nil && (cat.state.MajorVers != kMajorVers || cat.state.MinorVers != kMinorVers) {
		err = errors.Errorf("catalog version %d.%d is incompatible", cat.state.MajorVers, cat.state.MinorVers)
	}

	if err != nil {
		cat.Close()
		return nil, err
	}
	return cat, nil
}

func (cat *Store) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err == nil {
			err = item.Value(func(val []byte) error {
				return cat.state.Unmarshal(val)
			})
		}
		return err
	})
}

func (cat *Store) flushState() error {
	if !cat.stateDirty || cat.readOnly {
		return nil
	}
	stateBuf, err := cat.state.Marshal()
	if err != nil {
		return err
	}
	err = cat.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gCatalogStateKey, stateBuf)
	})
	if err != nil {
		return errors.Wrap(err, "flushing catalog state")
	}
	cat.stateDirty = false
	return nil
}

func (cat *Store) Close() error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	var err error
	if cat.db != nil {
		err = cat.flushState()
		if closeErr := cat.db.Close(); err == nil {
			err = closeErr
		}
		cat.db = nil
		cat.ctx.DetachCatalog(cat)
		cat.ctx = nil
	}
	return err
}

func (cat *Store) IsReadOnly() bool {
	return cat.readOnly
}

func (cat *Store) NumLevels() int {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return int(cat.state.NumLevels)
}

// RunID returns the ID issued when this catalog was created.
func (cat *Store) RunID() string {
	return cat.state.RunID
}

// IsWeighted returns true if this catalog holds weighted bond graph classes.
func (cat *Store) IsWeighted() bool {
	return cat.state.Weighted
}

// TryAddLevel implements expand.LevelAdder.
func (cat *Store) TryAddLevel(lvl *expand.Level) bool {
	err := cat.AddLevel(lvl)
	if err != nil {
		klog.Warningf("catalog: level %d not added: %v", lvl.Size, err)
		return false
	}
	return true
}

// AddLevel writes every record of lvl, which must be the next size of this catalog.
func (cat *Store) AddLevel(lvl *expand.Level) error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.readOnly {
		return nlce.ErrCatalogReadOnly
	}
	if cat.db == nil {
		return errors.Wrap(nlce.ErrBadCatalogParam, "catalog is closed")
	}
	if lvl.Size != int(cat.state.NumLevels)+1 {
		return errors.Wrapf(nlce.ErrBadLevel, "have %d levels, got size %d", cat.state.NumLevels, lvl.Size)
	}

	// badger retains keys and values until the batch commits
	wb := cat.db.NewWriteBatch()

	err := func() error {
		for s, m := range lvl.Clusters {
			if err := wb.Set(formKey(nil, kClusterKey, lvl.Size, s), proto.EncodeVarint(uint64(m))); err != nil {
				return err
			}
		}
		for s, tc := range lvl.Topo {
			if tc.Graph.IsWeighted() {
				cat.state.Weighted = true
			}
			if err := wb.Set(formKey(nil, kTopoKey, lvl.Size, s), encodeTopoCluster(tc)); err != nil {
				return err
			}
		}
		for s, counts := range lvl.Subclusters {
			if err := wb.Set(formKey(nil, kSubclusterKey, lvl.Size, s), encodeCounts(counts)); err != nil {
				return err
			}
		}
		return wb.Flush()
	}()
	if err != nil {
		wb.Cancel()
		return errors.Wrapf(err, "writing level %d", lvl.Size)
	}

	cat.state.NumLevels = uint32(lvl.Size)
	cat.stateDirty = true
	return cat.flushState()
}

// LoadLevel reads back the level of the given cluster size.
func (cat *Store) LoadLevel(size int) (*expand.Level, error) {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if size < 1 || size > int(cat.state.NumLevels) {
		return nil, errors.Wrapf(nlce.ErrBadLevel, "size %d not in catalog", size)
	}

	lvl := &expand.Level{
		Size:        size,
		Clusters:    make(nlce.ClusterSet),
		Topo:        make(expand.TopoClusters),
		Subclusters: make(expand.SubclusterTable),
	}

	err := cat.db.View(func(txn *badger.Txn) error {
		err := scanPrefix(txn, formPrefix(nil, kClusterKey, size), func(s nlce.State, val []byte) error {
			m, n := proto.DecodeVarint(val)
			if n == 0 {
				return errors.Wrap(nlce.ErrUnmarshal, "multiplicity")
			}
			lvl.Clusters[s] = int64(m)
			return nil
		})
		if err != nil {
			return err
		}

		err = scanPrefix(txn, formPrefix(nil, kTopoKey, size), func(s nlce.State, val []byte) error {
			tc, err := decodeTopoCluster(s, val)
			if err == nil {
				lvl.Topo[s] = tc
			}
			return err
		})
		if err != nil {
			return err
		}

		return scanPrefix(txn, formPrefix(nil, kSubclusterKey, size), func(s nlce.State, val []byte) error {
			counts, err := decodeCounts(val)
			if err == nil {
				lvl.Subclusters[s] = counts
			}
			return err
		})
	})
	if err != nil {
		return nil, errors.Wrapf(err, "loading level %d", size)
	}
	return lvl, nil
}

// Load reads back every level of this catalog.
func (cat *Store) Load() (*expand.Catalog, error) {
	mem := &expand.Catalog{
		Weighted: cat.IsWeighted(),
	}
	for size := 1; size <= cat.NumLevels(); size++ {
		lvl, err := cat.LoadLevel(size)
		if err != nil {
			return nil, err
		}
		mem.Levels = append(mem.Levels, lvl)
	}
	return mem, nil
}

func scanPrefix(txn *badger.Txn, prefix []byte, onRecord func(s nlce.State, val []byte) error) error {
	it := txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: true,
		PrefetchSize:   100,
		Prefix:         prefix,
	})
	defer it.Close()

	for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		s, err := stateFromKey(item.Key())
		if err != nil {
			return err
		}
		err = item.Value(func(val []byte) error {
			return onRecord(s, val)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
