package bondgraph

import (
	"encoding/binary"
	"math/bits"

	"github.com/dchest/siphash"
	"golang.org/x/exp/slices"
)

// MaxInvariantTraces bounds how many closed-walk traces are computed per graph.
const MaxInvariantTraces = 8

// Certificate hash keys
const (
	certK0 = 0x6e6c63652d626f6e
	certK1 = 0x642d677261706873
)

// Traces is a sequence of closed-walk counts tr(A^1), tr(A^2), ... of a bond graph adjacency matrix.
//
// For weighted graphs each edge contributes 2w+1 so that a zero weight still connects.
type Traces []int64

// IsEqual returns if two traces have the same prefix.
// The number of elements compared is the trace with the shorter length, so a Traces of length 0 will be equal to all other Traces.
func (TX Traces) IsEqual(target Traces) bool {
	N := min(len(TX), len(target))
	for i := 0; i < N; i++ {
		if TX[i] != target[i] {
			return false
		}
	}
	return true
}

// AppendTracesLSM appends a canonical binary encoding of TX to []out.
func (TX Traces) AppendTracesLSM(out []byte) []byte {
	numTraces := len(TX)

	// Odd traces first
	for i := 0; i < numTraces; i += 2 {
		out = binary.AppendVarint(out, TX[i])
	}

	// Even traces second
	for i := 1; i < numTraces; i += 2 {
		out = binary.AppendVarint(out, TX[i])
	}
	return out
}

// edgeFlow is the adjacency matrix entry used for walk counting.
func (X *Graph) edgeFlow(u, v int) int64 {
	if !X.weighted {
		return 1
	}
	return 2*int64(X.weight[u*X.numVerts+v]) + 1
}

// finish computes the traces, per-vertex signatures, and certificate once all edges are in place.
func (X *Graph) finish() {
	Nv := X.numVerts
	Nc := min(Nv, MaxInvariantTraces)

	X.traces = X.traces[:0]
	for ci := 0; ci < Nc; ci++ {
		X.traces = append(X.traces, 0)
	}

	var scrap [2 * 64]int64
	Ci0, Ci1 := scrap[:Nv], scrap[64:64+Nv]

	for vi := 0; vi < Nv; vi++ {
		for j := range Ci0 {
			Ci0[j] = 0
		}
		Ci0[vi] = 1

		sig := mix(uint64(X.Degree(vi)), 0)
		if X.weighted {
			wsum := int64(0)
			for b := X.adj[vi]; b != 0; b &= b - 1 {
				wsum += X.edgeFlow(vi, bits.TrailingZeros64(b))
			}
			sig = mix(sig, uint64(wsum))
		}

		for ci := 0; ci < Nc; ci++ {
			for vj := 0; vj < Nv; vj++ {
				flow := int64(0)
				for b := X.adj[vj]; b != 0; b &= b - 1 {
					vk := bits.TrailingZeros64(b)
					flow += X.edgeFlow(vj, vk) * Ci0[vk]
				}
				Ci1[vj] = flow
			}
			X.traces[ci] += Ci1[vi]
			sig = mix(sig, uint64(Ci1[vi]))
			Ci0, Ci1 = Ci1, Ci0
		}
		X.vtxSig[vi] = sig
	}

	X.cert = X.calcCertificate()
}

func (X *Graph) calcCertificate() uint64 {
	var buf [512]byte
	var sigs [64]uint64

	key := buf[:0]
	key = binary.AppendUvarint(key, uint64(X.numVerts))
	key = binary.AppendUvarint(key, uint64(X.numEdges))
	if X.weighted {
		key = append(key, 1)
	} else {
		key = append(key, 0)
	}
	key = X.traces.AppendTracesLSM(key)

	sorted := append(sigs[:0], X.vtxSig...)
	slices.Sort(sorted)
	for _, sig := range sorted {
		key = binary.LittleEndian.AppendUint64(key, sig)
	}
	return siphash.Hash(certK0, certK1, key)
}

func mix(h, x uint64) uint64 {
	h ^= x + 0x9e3779b97f4a7c15 + (h << 6) + (h >> 2)
	h *= 0xbf58476d1ce4e5b9
	return h ^ (h >> 31)
}
