// Copyright 2024 The Factorgraph Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package g2o loads the line-oriented g2o pose-graph format (the
// M3500/Sphere2500-style benchmarks spec.md §8 names) into a
// graph.Graph/graph.Values pair: VERTEX_SE2/EDGE_SE2 for planar poses,
// VERTEX_SE3:QUAT/EDGE_SE3:QUAT for 3D poses. No library in the
// retrieval pack parses this line format, so the scan itself is
// stdlib bufio/strconv (see DESIGN.md); everything it builds from the
// parsed fields (Values, Graph, noise models) goes through this
// module's own grounded types.
package g2o

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"

	"github.com/dpedroso-lab/factorgraph/factor"
	"github.com/dpedroso-lab/factorgraph/graph"
	"github.com/dpedroso-lab/factorgraph/manifold"
	"github.com/dpedroso-lab/factorgraph/noise"
	"github.com/dpedroso-lab/factorgraph/symbol"
)

// Load reads g2o-formatted text and returns the graph of BetweenResidual
// factors and the initial Values it references, per spec.md §8's M3500
// (SE2) and Sphere2500 (SE3) scenarios.
func Load(text []byte) (*graph.Graph, *graph.Values, error) {
	g := graph.NewGraph()
	vs := graph.NewValues()

	scanner := bufio.NewScanner(bytes.NewReader(text))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		tag := fields[0]
		args := fields[1:]

		var err error
		switch tag {
		case "VERTEX_SE2":
			err = loadVertexSE2(vs, args)
		case "VERTEX_SE3:QUAT":
			err = loadVertexSE3(vs, args)
		case "EDGE_SE2":
			err = loadEdgeSE2(g, args)
		case "EDGE_SE3:QUAT":
			err = loadEdgeSE3(g, args)
		default:
			// unrecognized record kinds (e.g. FIX, PARAMS_SE2OFFSET) are
			// silently skipped, matching g2o's own tolerant reader.
		}
		if err != nil {
			return nil, nil, chk.Err("g2o: line %d: %v", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, chk.Err("g2o: scan failed: %v", err)
	}
	return g, vs, nil
}

func floats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, chk.Err("malformed number %q: %v", a, err)
		}
		out[i] = v
	}
	return out, nil
}

func key(id float64) symbol.Key { return symbol.Make('x', uint64(id)) }

func loadVertexSE2(vs *graph.Values, args []string) error {
	v, err := floats(args)
	if err != nil || len(v) < 4 {
		return chk.Err("VERTEX_SE2 expects id x y theta")
	}
	return vs.Insert(key(v[0]), manifold.NewSE2(v[3], v[1], v[2]))
}

func loadVertexSE3(vs *graph.Values, args []string) error {
	v, err := floats(args)
	if err != nil || len(v) < 8 {
		return chk.Err("VERTEX_SE3:QUAT expects id x y z qx qy qz qw")
	}
	r := manifold.NewSO3(v[7], v[4], v[5], v[6])
	return vs.Insert(key(v[0]), manifold.NewSE3(r, v[1], v[2], v[3]))
}

func loadEdgeSE2(g *graph.Graph, args []string) error {
	v, err := floats(args)
	if err != nil || len(v) < 11 {
		return chk.Err("EDGE_SE2 expects id1 id2 dx dy dtheta + 6 upper-triangular information entries")
	}
	delta := manifold.NewSE2(v[4], v[2], v[3])
	info := upperTriangular(v[5:11], 3)
	nm, err := gaussianFromInfo(info)
	if err != nil {
		return err
	}
	f, err := factor.New(factor.NewBetweenResidual(delta), []symbol.Key{key(v[0]), key(v[1])}, nm, nil)
	if err != nil {
		return err
	}
	g.Add(f)
	return nil
}

func loadEdgeSE3(g *graph.Graph, args []string) error {
	v, err := floats(args)
	if err != nil || len(v) < 30 {
		return chk.Err("EDGE_SE3:QUAT expects id1 id2 dx dy dz qx qy qz qw + 21 upper-triangular information entries")
	}
	r := manifold.NewSO3(v[8], v[5], v[6], v[7])
	delta := manifold.NewSE3(r, v[2], v[3], v[4])
	info := upperTriangular(v[9:30], 6)
	nm, err := gaussianFromInfo(info)
	if err != nil {
		return err
	}
	f, err := factor.New(factor.NewBetweenResidual(delta), []symbol.Key{key(v[0]), key(v[1])}, nm, nil)
	if err != nil {
		return err
	}
	g.Add(f)
	return nil
}

// upperTriangular expands a flat row-major upper-triangular listing
// (g2o's information-matrix encoding) into a full symmetric m x m
// matrix.
func upperTriangular(flat []float64, m int) [][]float64 {
	out := make([][]float64, m)
	for i := range out {
		out[i] = make([]float64, m)
	}
	idx := 0
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			out[i][j] = flat[idx]
			out[j][i] = flat[idx]
			idx++
		}
	}
	return out
}

// gaussianFromInfo builds a noise.Gaussian directly from an
// information matrix Σ⁻¹ (g2o's native convention, rather than
// spec.md's covariance one; see DESIGN.md) via its Cholesky factor
// Σ⁻¹ = UᵀU, which is exactly the square-root-information matrix
// noise.FromSqrtInfo wants.
func gaussianFromInfo(info [][]float64) (*noise.Gaussian, error) {
	m := len(info)
	sym := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			sym.SetSym(i, j, info[i][j])
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, chk.Err("information matrix is not positive-definite")
	}
	var L mat.TriDense
	chol.LTo(&L)
	u := make([][]float64, m)
	for i := 0; i < m; i++ {
		u[i] = make([]float64, m)
		for j := 0; j < m; j++ {
			u[i][j] = L.At(j, i) // U = Lᵀ
		}
	}
	return noise.FromSqrtInfo(u), nil
}
