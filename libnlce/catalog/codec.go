package catalog

import (
	"encoding/binary"

	"github.com/2x3systems/nlce/libnlce/bondgraph"
	"github.com/2x3systems/nlce/libnlce/expand"
	"github.com/2x3systems/nlce/nlce"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

// CatalogState is the header record of a catalog db.
type CatalogState struct {
	MajorVers uint32
	MinorVers uint32
	RunID     string // issued when the catalog is created
	NumLevels uint32 // sizes 1..NumLevels are stored
	Weighted  bool   // classes were formed from weighted bond graphs
}

func (state *CatalogState) Marshal() ([]byte, error) {
	buf := proto.NewBuffer(make([]byte, 0, 64))
	buf.EncodeVarint(uint64(state.MajorVers))
	buf.EncodeVarint(uint64(state.MinorVers))
	buf.EncodeStringBytes(state.RunID)
	buf.EncodeVarint(uint64(state.NumLevels))
	buf.EncodeVarint(boolToVarint(state.Weighted))
	return buf.Bytes(), nil
}

func (state *CatalogState) Unmarshal(val []byte) error {
	buf := proto.NewBuffer(val)
	var fields [4]uint64
	var err error

	if fields[0], err = buf.DecodeVarint(); err == nil {
		if fields[1], err = buf.DecodeVarint(); err == nil {
			if state.RunID, err = buf.DecodeStringBytes(); err == nil {
				if fields[2], err = buf.DecodeVarint(); err == nil {
					fields[3], err = buf.DecodeVarint()
				}
			}
		}
	}
	if err != nil {
		return errors.Wrap(nlce.ErrUnmarshal, err.Error())
	}
	state.MajorVers = uint32(fields[0])
	state.MinorVers = uint32(fields[1])
	state.NumLevels = uint32(fields[2])
	state.Weighted = fields[3] != 0
	return nil
}

// formKey forms the key of a per-cluster record: kind, size, big-endian state.
func formKey(key []byte, kind byte, size int, s nlce.State) []byte {
	key = append(key, kind, byte(size))
	return binary.BigEndian.AppendUint64(key, uint64(s))
}

func formPrefix(key []byte, kind byte, size int) []byte {
	return append(key, kind, byte(size))
}

func stateFromKey(key []byte) (nlce.State, error) {
	if len(key) != 10 {
		return 0, errors.Wrap(nlce.ErrUnmarshal, "cluster key")
	}
	return nlce.State(binary.BigEndian.Uint64(key[2:])), nil
}

func encodeTopoCluster(tc *expand.TopoCluster) []byte {
	X := tc.Graph
	buf := proto.NewBuffer(make([]byte, 0, 64))
	buf.EncodeVarint(uint64(tc.Multiplicity))
	buf.EncodeVarint(uint64(X.NumVertices()))
	buf.EncodeVarint(boolToVarint(X.IsWeighted()))
	for _, site := range X.Sites() {
		buf.EncodeVarint(uint64(site))
	}
	edges := X.Edges()
	buf.EncodeVarint(uint64(len(edges)))
	for _, e := range edges {
		buf.EncodeVarint(uint64(e.A))
		buf.EncodeVarint(uint64(e.B))
		buf.EncodeZigzag64(uint64(e.Weight))
	}
	return buf.Bytes()
}

func decodeTopoCluster(s nlce.State, val []byte) (*expand.TopoCluster, error) {
	buf := proto.NewBuffer(val)
	rd := varintReader{buf: buf}

	tc := &expand.TopoCluster{
		State:        s,
		Multiplicity: int64(rd.next()),
	}
	numVerts := int(rd.next())
	weighted := rd.next() != 0
	if rd.err == nil && numVerts > nlce.MaxSites {
		return nil, errors.Wrapf(nlce.ErrUnmarshal, "%d vertices", numVerts)
	}

	sites := make([]int, numVerts)
	for i := range sites {
		sites[i] = int(rd.next())
	}
	numEdges := int(rd.next())
	if rd.err == nil && numEdges > numVerts*numVerts {
		return nil, errors.Wrapf(nlce.ErrUnmarshal, "%d edges", numEdges)
	}
	edges := make([]bondgraph.Edge, 0, numEdges)
	for i := 0; i < numEdges && rd.err == nil; i++ {
		e := bondgraph.Edge{
			A: int(rd.next()),
			B: int(rd.next()),
		}
		e.Weight = int(int64(rd.nextZigzag()))
		edges = append(edges, e)
	}
	if rd.err != nil {
		return nil, errors.Wrap(nlce.ErrUnmarshal, rd.err.Error())
	}

	var err error
	tc.Graph, err = bondgraph.NewGraph(numVerts, edges, weighted, sites)
	if err != nil {
		return nil, err
	}
	return tc, nil
}

func encodeCounts(counts map[nlce.State]int64) []byte {
	buf := proto.NewBuffer(make([]byte, 0, 16+12*len(counts)))
	buf.EncodeVarint(uint64(len(counts)))
	for _, sub := range nlce.SortedStates(counts) {
		buf.EncodeFixed64(uint64(sub))
		buf.EncodeVarint(uint64(counts[sub]))
	}
	return buf.Bytes()
}

func decodeCounts(val []byte) (map[nlce.State]int64, error) {
	buf := proto.NewBuffer(val)
	rd := varintReader{buf: buf}

	N := int(rd.next())
	counts := make(map[nlce.State]int64, N)
	for i := 0; i < N && rd.err == nil; i++ {
		sub := nlce.State(rd.nextFixed())
		counts[sub] = int64(rd.next())
	}
	if rd.err != nil {
		return nil, errors.Wrap(nlce.ErrUnmarshal, rd.err.Error())
	}
	return counts, nil
}

// varintReader decodes successive values, latching the first error.
type varintReader struct {
	buf *proto.Buffer
	err error
}

func (rd *varintReader) next() uint64 {
	if rd.err != nil {
		return 0
	}
	var x uint64
	x, rd.err = rd.buf.DecodeVarint()
	return x
}

func (rd *varintReader) nextZigzag() uint64 {
	if rd.err != nil {
		return 0
	}
	var x uint64
	x, rd.err = rd.buf.DecodeZigzag64()
	return x
}

func (rd *varintReader) nextFixed() uint64 {
	if rd.err != nil {
		return 0
	}
	var x uint64
	x, rd.err = rd.buf.DecodeFixed64()
	return x
}

func boolToVarint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
