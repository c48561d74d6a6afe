package pynlce

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/2x3systems/nlce/libnlce/catalog"
	"github.com/2x3systems/nlce/libnlce/expand"
	"github.com/2x3systems/nlce/libnlce/lattice"
	"github.com/2x3systems/nlce/libnlce/symm"
	"github.com/2x3systems/nlce/nlce"
	"github.com/go-python/gpython/py"
)

var (
	LIB_VERSION = "v1.2026.1"
)

var (
	pyLatticeType     = py.NewType("Lattice", "a finite lattice and its symmetry group")
	pyLevelStreamType = py.NewType("LevelStream", "expand.LevelStream")
	pyCatalogType     = py.NewType("Catalog", "a persisted cluster catalog")
	pyWorkspaceType   = py.NewType("Workspace", "collects active session resources and catalogs")
)

const (
	READ_ONLY = 0x01

	kWorkspaceAttr = "_Workspace"
)

type pyLattice struct {
	L   *nlce.Lattice
	Sym nlce.Symmetry
}

func (lat *pyLattice) Type() *py.Type {
	return pyLatticeType
}

// Arg 1 (int): number of sites
// Arg 2 (bool): periodic
// Arg 3 (bool): reflection symmetry
func py_Chain(module py.Object, args py.Tuple) (py.Object, error) {
	var n int32
	var periodic, reflect bool
	err := py.LoadTuple(args, []interface{}{&n, &periodic, &reflect})
	if err != nil {
		return nil, err
	}
	if n < 1 || n > nlce.MaxSites {
		return nil, py.ExceptionNewf(py.ValueError, "chain length %d not in 1..%d", n, nlce.MaxSites)
	}
	return &pyLattice{
		L:   lattice.Chain(int(n), periodic),
		Sym: symm.ChainGroup(int(n), periodic, reflect),
	}, nil
}

// Arg 1, 2 (int): lx, ly
// Arg 3 (bool): periodic
// Arg 4 (bool): point group symmetry
func py_Square(module py.Object, args py.Tuple) (py.Object, error) {
	var lx, ly int32
	var periodic, point bool
	err := py.LoadTuple(args, []interface{}{&lx, &ly, &periodic, &point})
	if err != nil {
		return nil, err
	}
	if lx < 1 || ly < 1 || lx*ly > nlce.MaxSites {
		return nil, py.ExceptionNewf(py.ValueError, "%dx%d square lattice exceeds %d sites", lx, ly, nlce.MaxSites)
	}
	return &pyLattice{
		L:   lattice.Square(int(lx), int(ly), periodic),
		Sym: symm.SquareGroup(int(lx), int(ly), periodic, point),
	}, nil
}

// Arg 1 (str): bond expression, e.g. "0-1-2, 1-3:2"
func py_Bonds(module py.Object, args py.Tuple) (py.Object, error) {
	var expr string
	err := py.LoadTuple(args, []interface{}{&expr})
	if err != nil {
		return nil, err
	}
	L, err := lattice.ParseBonds(expr)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return &pyLattice{
		L:   L,
		Sym: symm.Trivial(L.NumSites),
	}, nil
}

func py_Lattice_NumSites(self py.Object, args py.Tuple) (py.Object, error) {
	lat := self.(*pyLattice)
	return py.Int(lat.L.NumSites), nil
}

// Arg 1 (int): max cluster size
// kwargs: weighted (bool), strict (bool), workers (int)
func py_Lattice_Expand(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	lat := self.(*pyLattice)

	var maxSize int32
	err := py.LoadTuple(args, []interface{}{&maxSize})
	if err != nil {
		return nil, err
	}

	var workers int32
	b := &expand.Builder{
		Lattice:  lat.L,
		Symmetry: lat.Sym,
	}
	py.LoadAttr(kwargs, "weighted", &b.Opts.Weighted)
	py.LoadAttr(kwargs, "strict", &b.Opts.Strict)
	py.LoadAttr(kwargs, "workers", &workers)
	b.Opts.Workers = int(workers)

	return wrapLevelStream(b.Stream(int(maxSize))), nil
}

type levelStream struct {
	*expand.LevelStream
}

func (stream levelStream) Type() *py.Type {
	return pyLevelStreamType
}

func wrapLevelStream(stream *expand.LevelStream) py.Object {
	return py.Object(levelStream{stream})
}

func py_LevelStream_Go(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(levelStream)
	count := stream.PullAll()
	if err := stream.Err(); err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.Int(count), nil
}

type echoToWriter struct {
	stdout *os.File
	to     io.WriteCloser
}

func (echo *echoToWriter) Write(buf []byte) (int, error) {
	if echo.to == nil {
		return echo.stdout.Write(buf)
	}
	return echo.to.Write(buf)
}

func (echo *echoToWriter) Close() error {
	if echo.to != nil {
		return echo.to.Close()
	}
	return nil
}

var gOutCount = int32(0)

// Arg 1 (str): label
// kwargs: label (str), graphs (bool), subclusters (bool), file (str)
func py_LevelStream_Print(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	stream := self.(levelStream)
	var pathname string

	opts := expand.PrintOpts{}
	py.LoadTuple(args, []interface{}{&opts.Label})
	if opts.Label == "" {
		py.LoadAttr(kwargs, "label", &opts.Label)
	}
	if opts.Label == "" {
		opts.Label = fmt.Sprintf("out[%d]", atomic.AddInt32(&gOutCount, 1))
	}
	py.LoadAttr(kwargs, "graphs", &opts.Graphs)
	py.LoadAttr(kwargs, "subclusters", &opts.Subclusters)
	py.LoadAttr(kwargs, "file", &pathname)

	writer := &echoToWriter{
		stdout: os.Stdout,
	}
	if len(pathname) > 0 {
		os.MkdirAll(filepath.Dir(pathname), 0700)

		file, err := os.OpenFile(pathname, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0600)
		if err != nil {
			return nil, py.ExceptionNewf(py.FileNotFoundError, "%v", err)
		}
		writer.to = file
	}

	next := stream.Print(writer, opts)
	return wrapLevelStream(next), nil
}

func py_LevelStream_AddTo(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(levelStream)
	if len(args) != 1 {
		return nil, py.ExceptionNewf(py.TypeError, "AddTo expects a Catalog")
	}
	cat, ok := args[0].(*pyCatalog)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected Catalog object (got %v)", args[0].Type().Name)
	}
	if cat.IsReadOnly() {
		return nil, py.ExceptionNewf(py.PermissionError, "%v", nlce.ErrCatalogReadOnly)
	}

	next := stream.AddTo(cat.Store)
	return wrapLevelStream(next), nil
}

type Workspace struct {
	CatalogCtx nlce.CatalogContext
}

func (ws *Workspace) Close() {
	ws.CatalogCtx.Close()
	<-ws.CatalogCtx.Done()
}

func (ws *Workspace) Type() *py.Type {
	return pyWorkspaceType
}

func py_GetWorkspace(module py.Object, args py.Tuple) (py.Object, error) {
	wsObj, _ := py.GetAttrString(module, kWorkspaceAttr)
	if wsObj == nil {
		ws := &Workspace{
			CatalogCtx: nlce.NewCatalogContext(),
		}
		wsObj = ws
		py.SetAttrString(module, kWorkspaceAttr, wsObj)
	}
	return wsObj, nil
}

func py_Workspace_CatalogExists(self py.Object, args py.Tuple) (py.Object, error) {
	_ = self.(*Workspace)

	var pathname string
	err := py.LoadTuple(args, []interface{}{&pathname})
	if err != nil {
		return nil, err
	}
	_, err = os.Stat(pathname)
	if os.IsNotExist(err) {
		return py.False, nil
	}
	return py.True, nil
}

// Arg 1 (str): catalog pathname ("" for in-memory)
// Arg 2 (int): flags
func py_Workspace_OpenCatalog(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*Workspace)

	var pathname string
	var flags int32
	err := py.LoadTuple(args, []interface{}{&pathname, &flags})
	if err != nil {
		return nil, err
	}

	opts := nlce.CatalogOpts{
		ReadOnly:   (flags & READ_ONLY) != 0,
		DbPathName: pathname,
	}
	store, err := catalog.OpenCatalog(ws.CatalogCtx, opts)
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return &pyCatalog{store}, nil
}

type pyCatalog struct {
	*catalog.Store
}

func (cat *pyCatalog) Type() *py.Type {
	return pyCatalogType
}

func py_Catalog_Close(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(*pyCatalog)
	if cat.Store != nil {
		cat.Store.Close()
		cat.Store = nil
	}
	return py.None, nil
}

func py_Catalog_NumLevels(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(*pyCatalog)
	return py.Int(cat.NumLevels()), nil
}

func loadLevelArg(cat *pyCatalog, args py.Tuple) (*expand.Level, error) {
	if len(args) < 1 {
		return nil, py.ExceptionNewf(py.TypeError, "cluster size expected")
	}
	size, err := py.GetInt(args[0])
	if err != nil {
		return nil, err
	}
	lvl, err := cat.LoadLevel(int(size))
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return lvl, nil
}

// Arg 1 (int): cluster size
// Returns a tuple of (state, multiplicity) for each topological class of that size.
func py_Catalog_Classes(self py.Object, args py.Tuple) (py.Object, error) {
	lvl, err := loadLevelArg(self.(*pyCatalog), args)
	if err != nil {
		return nil, err
	}
	classes := lvl.Topo.Sorted()
	out := make(py.Tuple, len(classes))
	for i, tc := range classes {
		out[i] = py.Tuple{py.Int(tc.State), py.Int(tc.Multiplicity)}
	}
	return out, nil
}

// Arg 1 (int): cluster size
// Arg 2 (int): class state
// Returns a tuple of (state, count) for each smaller class embedded in the given class.
func py_Catalog_Subclusters(self py.Object, args py.Tuple) (py.Object, error) {
	lvl, err := loadLevelArg(self.(*pyCatalog), args)
	if err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, py.ExceptionNewf(py.TypeError, "class state expected")
	}
	s, err := py.GetInt(args[1])
	if err != nil {
		return nil, err
	}
	counts, exists := lvl.Subclusters[nlce.State(s)]
	if !exists {
		return nil, py.ExceptionNewf(py.KeyError, "no class %#x of size %d", uint64(s), lvl.Size)
	}
	subs := nlce.SortedStates(counts)
	out := make(py.Tuple, len(subs))
	for i, sub := range subs {
		out[i] = py.Tuple{py.Int(sub), py.Int(counts[sub])}
	}
	return out, nil
}

// Arg 1 (str): export pathname
func py_Catalog_Export(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(*pyCatalog)
	var pathname string
	err := py.LoadTuple(args, []interface{}{&pathname})
	if err != nil {
		return nil, err
	}
	file, err := os.Create(pathname)
	if err != nil {
		return nil, py.ExceptionNewf(py.FileNotFoundError, "%v", err)
	}
	err = cat.Export(file)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.None, nil
}

func init() {

	/////////////////////////////////
	// Lattice
	{
		pyLatticeType.Dict["NumSites"] = py.MustNewMethod("NumSites", py_Lattice_NumSites, 0, "")
		pyLatticeType.Dict["Expand"] = py.MustNewMethod("Expand", py_Lattice_Expand, 0, "streams cluster levels of sizes 1..max_size")
	}

	/////////////////////////////////
	// LevelStream
	{
		pyLevelStreamType.Dict["Go"] = py.MustNewMethod("Go", py_LevelStream_Go, 0, "counts the number of levels output from the LevelStream")
		pyLevelStreamType.Dict["Print"] = py.MustNewMethod("Print", py_LevelStream_Print, 0, "prints each level from the LevelStream")
		pyLevelStreamType.Dict["AddTo"] = py.MustNewMethod("AddTo", py_LevelStream_AddTo, 0, "")
	}

	/////////////////////////////////
	// Catalog
	{
		pyCatalogType.Dict["NumLevels"] = py.MustNewMethod("NumLevels", py_Catalog_NumLevels, 0, "")
		pyCatalogType.Dict["Classes"] = py.MustNewMethod("Classes", py_Catalog_Classes, 0, "")
		pyCatalogType.Dict["Subclusters"] = py.MustNewMethod("Subclusters", py_Catalog_Subclusters, 0, "")
		pyCatalogType.Dict["Export"] = py.MustNewMethod("Export", py_Catalog_Export, 0, "")
		pyCatalogType.Dict["Close"] = py.MustNewMethod("Close", py_Catalog_Close, 0, "")
	}

	/////////////////////////////////
	// Workspace
	{
		pyWorkspaceType.Dict["OpenCatalog"] = py.MustNewMethod("OpenCatalog", py_Workspace_OpenCatalog, 0, "")
		pyWorkspaceType.Dict["CatalogExists"] = py.MustNewMethod("CatalogExists", py_Workspace_CatalogExists, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("Chain", py_Chain, 0, "Chain(n, periodic, reflect)"),
			py.MustNewMethod("Square", py_Square, 0, "Square(lx, ly, periodic, point)"),
			py.MustNewMethod("Bonds", py_Bonds, 0, "Bonds(expr)"),
			py.MustNewMethod("GetWorkspace", py_GetWorkspace, 0, ""),
		}

		globals := py.StringDict{
			"LIB_VERSION": py.String(LIB_VERSION),
			"MAX_SITES":   py.Int(nlce.MaxSites),
			"READ_ONLY":   py.Int(READ_ONLY),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_pynlce",
				Doc:  "NLCE cluster catalog gpython module",
			},
			Methods: methods,
			Globals: globals,
			OnContextClosed: func(m *py.Module) {
				wsObj, _ := py.GetAttrString(m, kWorkspaceAttr)
				if wsObj != nil {
					wsObj.(*Workspace).Close()
				}
			},
		})
	}
}
