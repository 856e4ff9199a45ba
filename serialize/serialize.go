// Copyright 2024 The Factorgraph Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package serialize persists a graph.Values snapshot to disk, the
// optional external facility spec.md §6 names. Grounded on
// inp/sim.go's Encoder/EncType field ("gob"/"json", defaulting to
// "gob" for anything else) and fem's Summary.Save/Read pair, which
// read/write simulation state through that same switch; here the
// state being switched on is a tagged sum of manifold.Variable
// concrete types rather than fem's Solution arrays.
package serialize

import (
	"bytes"
	"encoding/gob"
	"encoding/json"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/dpedroso-lab/factorgraph/graph"
	"github.com/dpedroso-lab/factorgraph/manifold"
	"github.com/dpedroso-lab/factorgraph/symbol"
)

func init() {
	gob.Register(manifold.SO2{})
	gob.Register(manifold.SO3{})
	gob.Register(manifold.SE2{})
	gob.Register(manifold.SE3{})
	gob.Register(manifold.VectorVarN{})
	gob.Register(manifold.ImuBias{})
}

// entry is one (key, variable) snapshot record.
type entry struct {
	Key symbol.Key
	Var manifold.Variable
}

// jsonEntry is entry's JSON wire form: manifold.Variable isn't
// JSON-decodable as an interface without a concrete type hint, so the
// type tag plus a flat payload stand in for it (each concrete type's
// fields, in the order its constructor takes them).
type jsonEntry struct {
	Key     symbol.Key
	Tag     byte
	Payload []float64
}

// SaveValues writes every (key, variable) pair in vs to path using the
// requested encoder; encType follows inp/sim.go's convention: "json"
// selects JSON, anything else (including "") defaults to "gob".
func SaveValues(path, encType string, vs *graph.Values) error {
	var entries []entry
	vs.Each(func(key symbol.Key, v manifold.Variable) {
		entries = append(entries, entry{Key: key, Var: v})
	})

	var buf bytes.Buffer
	if encType == "json" {
		wire := make([]jsonEntry, len(entries))
		for i, e := range entries {
			w, err := toJSONEntry(e)
			if err != nil {
				return err
			}
			wire[i] = w
		}
		data, err := json.MarshalIndent(wire, "", "  ")
		if err != nil {
			return chk.Err("serialize: json encode failed: %v", err)
		}
		buf.Write(data)
	} else {
		if err := gob.NewEncoder(&buf).Encode(entries); err != nil {
			return chk.Err("serialize: gob encode failed: %v", err)
		}
	}
	return io.WriteFile(path, &buf)
}

// LoadValues reads a snapshot written by SaveValues back into a fresh
// Values container.
func LoadValues(path, encType string) (*graph.Values, error) {
	data, err := io.ReadFile(path)
	if err != nil {
		return nil, chk.Err("serialize: read failed: %v", err)
	}

	vs := graph.NewValues()
	if encType == "json" {
		var wire []jsonEntry
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, chk.Err("serialize: json decode failed: %v", err)
		}
		for _, w := range wire {
			e, err := fromJSONEntry(w)
			if err != nil {
				return nil, err
			}
			if err := vs.Insert(e.Key, e.Var); err != nil {
				return nil, err
			}
		}
		return vs, nil
	}

	var entries []entry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entries); err != nil {
		return nil, chk.Err("serialize: gob decode failed: %v", err)
	}
	for _, e := range entries {
		if err := vs.Insert(e.Key, e.Var); err != nil {
			return nil, err
		}
	}
	return vs, nil
}

func toJSONEntry(e entry) (jsonEntry, error) {
	tag := e.Var.TypeTag()
	var p []float64
	switch v := e.Var.(type) {
	case manifold.SO2:
		p = []float64{v.Theta}
	case manifold.SO3:
		p = []float64{v.W, v.X, v.Y, v.Z}
	case manifold.SE2:
		p = []float64{v.Theta, v.Tx, v.Ty}
	case manifold.SE3:
		p = []float64{v.R.W, v.R.X, v.R.Y, v.R.Z, v.Tx, v.Ty, v.Tz}
	case manifold.VectorVarN:
		p = append([]float64{}, v.V...)
	case manifold.ImuBias:
		p = []float64{v.Gyro[0], v.Gyro[1], v.Gyro[2], v.Accel[0], v.Accel[1], v.Accel[2]}
	default:
		return jsonEntry{}, chk.Err("serialize: unsupported variable type %q", tag)
	}
	return jsonEntry{Key: e.Key, Tag: tag, Payload: p}, nil
}

func fromJSONEntry(w jsonEntry) (entry, error) {
	var v manifold.Variable
	switch w.Tag {
	case manifold.TypeSO2:
		v = manifold.NewSO2(w.Payload[0])
	case manifold.TypeSO3:
		v = manifold.NewSO3(w.Payload[0], w.Payload[1], w.Payload[2], w.Payload[3])
	case manifold.TypeSE2:
		v = manifold.NewSE2(w.Payload[0], w.Payload[1], w.Payload[2])
	case manifold.TypeSE3:
		v = manifold.NewSE3(manifold.NewSO3(w.Payload[0], w.Payload[1], w.Payload[2], w.Payload[3]), w.Payload[4], w.Payload[5], w.Payload[6])
	case manifold.TypeVector:
		v = manifold.NewVectorVarN(w.Payload)
	case manifold.TypeImuBias:
		v = manifold.NewImuBias([3]float64{w.Payload[0], w.Payload[1], w.Payload[2]}, [3]float64{w.Payload[3], w.Payload[4], w.Payload[5]})
	default:
		return entry{}, chk.Err("serialize: unknown type tag %q", w.Tag)
	}
	return entry{Key: w.Key, Var: v}, nil
}
