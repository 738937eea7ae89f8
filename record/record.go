// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package record implements the §6 binary I/O surfaces: the ADB per-case
// result file (an exact little-endian layout identified by an endianness
// tag, so it must use encoding/binary directly rather than a self-describing
// codec) and the restart file (Γ[0..2] history arrays), which follows
// gofem's own Encode/Decode convention (utl.Encoder/Decoder, backed here by
// encoding/gob) since no third-party exact layout is required there.
package record

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"io"

	"github.com/cpmech/gosl/chk"
)

// EndiannessTag is written at offset 0 of every ADB file to let a reader
// detect the writer's byte order.
const EndiannessTag int32 = -123789456

// Header is the ADB file's fixed preamble (§6), followed by NumSurfaces
// SurfaceMeta records.
type Header struct {
	ModelType     int32
	SymmetryFlag  int32
	UnsteadyFlag  int32
	Nloops        int32
	Nnodes        int32
	Ntris         int32
	Nedges        int32
	NumSurfaces   int32
	Sref          float64
	Cref          float64
	Bref          float64
	Xcg, Ycg, Zcg float64
}

// SurfaceMeta names one of the geometry's components and the level-1 loop
// id range it owns, so a reader can slice a case's per-loop Gamma/DCp
// arrays by surface without re-deriving component boundaries from the
// geometry provider (§6 "per-surface metadata").
type SurfaceMeta struct {
	Name                string
	Surface             int32 // geom.SurfaceType value
	Component           int32 // geom.Loop.Component
	FirstLoop, LastLoop int32 // inclusive level-1 loop id range
}

// CaseRecord is one Mach/alpha/beta solution snapshot (§6 "per-case record").
type CaseRecord struct {
	Mach, Alpha, Beta float64
	CpMin, CpMax      float64
	Gamma             []float64 // per loop
	DCpUnsteady       []float64 // per loop
	EdgeForce         [][3]float64
	LoopVelocity      [][3]float64
	NodeCp            []float32
	NodeCpUnsteady    []float32
	NodeGamma         []float32
	WakeState         []byte
	ControlDeflection []byte
}

// WriteHeader writes Header in little-endian order, preceded by the
// endianness tag, followed by one SurfaceMeta block per entry in surfaces
// (h.NumSurfaces is set from len(surfaces) before writing).
func WriteHeader(w io.Writer, h *Header, surfaces []SurfaceMeta) error {
	if err := binary.Write(w, binary.LittleEndian, EndiannessTag); err != nil {
		return chk.Err("record: cannot write endianness tag: %v", err)
	}
	h.NumSurfaces = int32(len(surfaces))
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return chk.Err("record: cannot write header: %v", err)
	}
	for i := range surfaces {
		if err := writeSurfaceMeta(w, &surfaces[i]); err != nil {
			return chk.Err("record: cannot write surface %d metadata: %v", i, err)
		}
	}
	return nil
}

// ReadHeader reads the endianness tag, the Header, then the Header's
// NumSurfaces SurfaceMeta blocks, validating the tag matches the writer's
// declared byte order (§6 "round-trippable").
func ReadHeader(r io.Reader) (*Header, []SurfaceMeta, error) {
	var tag int32
	if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
		return nil, nil, chk.Err("record: cannot read endianness tag: %v", err)
	}
	if tag != EndiannessTag {
		return nil, nil, chk.Err("record: endianness tag mismatch, got %d want %d", tag, EndiannessTag)
	}
	h := new(Header)
	if err := binary.Read(r, binary.LittleEndian, h); err != nil {
		return nil, nil, chk.Err("record: cannot read header: %v", err)
	}
	surfaces := make([]SurfaceMeta, h.NumSurfaces)
	for i := range surfaces {
		sm, err := readSurfaceMeta(r)
		if err != nil {
			return nil, nil, chk.Err("record: cannot read surface %d metadata: %v", i, err)
		}
		surfaces[i] = sm
	}
	return h, surfaces, nil
}

// writeSurfaceMeta writes one SurfaceMeta: a length-prefixed name (mirroring
// writeBytesBlock's convention) followed by its fixed int32 fields.
func writeSurfaceMeta(w io.Writer, sm *SurfaceMeta) error {
	if err := writeBytesBlock(w, []byte(sm.Name)); err != nil {
		return err
	}
	fields := [4]int32{sm.Surface, sm.Component, sm.FirstLoop, sm.LastLoop}
	return binary.Write(w, binary.LittleEndian, fields)
}

func readSurfaceMeta(r io.Reader) (SurfaceMeta, error) {
	var sm SurfaceMeta
	name, err := readBytesBlock(r)
	if err != nil {
		return sm, err
	}
	sm.Name = string(name)
	var fields [4]int32
	if err := binary.Read(r, binary.LittleEndian, &fields); err != nil {
		return sm, err
	}
	sm.Surface, sm.Component, sm.FirstLoop, sm.LastLoop = fields[0], fields[1], fields[2], fields[3]
	return sm, nil
}

// WriteCase writes one CaseRecord's fixed-plus-variable-length fields in
// little-endian order: Mach/alpha/beta, Cp range, per-loop (Gamma,
// dCp_unsteady), per-edge force, per-loop velocity, per-node Cp/Cp_unsteady/
// Gamma, then the opaque wake-state and control-deflection blocks (§6).
func WriteCase(w io.Writer, c *CaseRecord) error {
	scalars := []float64{c.Mach, c.Alpha, c.Beta, c.CpMin, c.CpMax}
	if err := binary.Write(w, binary.LittleEndian, scalars); err != nil {
		return chk.Err("record: cannot write case scalars: %v", err)
	}
	n := int32(len(c.Gamma))
	if err := binary.Write(w, binary.LittleEndian, n); err != nil {
		return err
	}
	for i := 0; i < len(c.Gamma); i++ {
		pair := [2]float64{c.Gamma[i], c.DCpUnsteady[i]}
		if err := binary.Write(w, binary.LittleEndian, pair); err != nil {
			return err
		}
	}
	ne := int32(len(c.EdgeForce))
	if err := binary.Write(w, binary.LittleEndian, ne); err != nil {
		return err
	}
	for _, f := range c.EdgeForce {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	for _, v := range c.LoopVelocity {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if err := writeFloat32s(w, c.NodeCp); err != nil {
		return err
	}
	if err := writeFloat32s(w, c.NodeCpUnsteady); err != nil {
		return err
	}
	if err := writeFloat32s(w, c.NodeGamma); err != nil {
		return err
	}
	if err := writeBytesBlock(w, c.WakeState); err != nil {
		return err
	}
	return writeBytesBlock(w, c.ControlDeflection)
}

// ReadCase reads back a CaseRecord written by WriteCase, reconstructing
// slice lengths from the embedded counts (bit-identical round trip, §8).
func ReadCase(r io.Reader) (*CaseRecord, error) {
	c := new(CaseRecord)
	scalars := make([]float64, 5)
	if err := binary.Read(r, binary.LittleEndian, scalars); err != nil {
		return nil, chk.Err("record: cannot read case scalars: %v", err)
	}
	c.Mach, c.Alpha, c.Beta, c.CpMin, c.CpMax = scalars[0], scalars[1], scalars[2], scalars[3], scalars[4]

	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	c.Gamma = make([]float64, n)
	c.DCpUnsteady = make([]float64, n)
	for i := 0; i < int(n); i++ {
		var pair [2]float64
		if err := binary.Read(r, binary.LittleEndian, &pair); err != nil {
			return nil, err
		}
		c.Gamma[i], c.DCpUnsteady[i] = pair[0], pair[1]
	}

	var ne int32
	if err := binary.Read(r, binary.LittleEndian, &ne); err != nil {
		return nil, err
	}
	c.EdgeForce = make([][3]float64, ne)
	for i := range c.EdgeForce {
		if err := binary.Read(r, binary.LittleEndian, &c.EdgeForce[i]); err != nil {
			return nil, err
		}
	}
	c.LoopVelocity = make([][3]float64, n)
	for i := range c.LoopVelocity {
		if err := binary.Read(r, binary.LittleEndian, &c.LoopVelocity[i]); err != nil {
			return nil, err
		}
	}
	var err error
	if c.NodeCp, err = readFloat32s(r); err != nil {
		return nil, err
	}
	if c.NodeCpUnsteady, err = readFloat32s(r); err != nil {
		return nil, err
	}
	if c.NodeGamma, err = readFloat32s(r); err != nil {
		return nil, err
	}
	if c.WakeState, err = readBytesBlock(r); err != nil {
		return nil, err
	}
	if c.ControlDeflection, err = readBytesBlock(r); err != nil {
		return nil, err
	}
	return c, nil
}

func writeFloat32s(w io.Writer, v []float32) error {
	n := int32(len(v))
	if err := binary.Write(w, binary.LittleEndian, n); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return binary.Write(w, binary.LittleEndian, v)
}

func readFloat32s(r io.Reader) ([]float32, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	v := make([]float32, n)
	if n == 0 {
		return v, nil
	}
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		return nil, err
	}
	return v, nil
}

func writeBytesBlock(w io.Writer, b []byte) error {
	n := int32(len(b))
	if err := binary.Write(w, binary.LittleEndian, n); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytesBlock(r io.Reader) ([]byte, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if n == 0 {
		return b, nil
	}
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// RestartState is the Γ[0..2] history array the restart file preserves: no
// header beyond the array length implied by the encoded state (§6).
type RestartState struct {
	Gamma [3][]float64
}

// Encoder/Decoder mirror gofem's utl.Encoder/utl.Decoder element-state
// round trip (ele/seepage/liquid.go's Encode/Decode), backed by gob since
// the restart file has no cross-language exact-layout requirement (unlike
// the ADB file).
type Encoder interface {
	Encode(v interface{}) error
}
type Decoder interface {
	Decode(v interface{}) error
}

// WriteRestart gob-encodes the Γ history arrays.
func WriteRestart(w io.Writer, s *RestartState) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(s); err != nil {
		return chk.Err("record: cannot encode restart state: %v", err)
	}
	return nil
}

// ReadRestart decodes a restart file written by WriteRestart.
func ReadRestart(r io.Reader) (*RestartState, error) {
	s := new(RestartState)
	dec := gob.NewDecoder(r)
	if err := dec.Decode(s); err != nil {
		return nil, chk.Err("record: cannot decode restart state: %v", err)
	}
	return s, nil
}

// Buffer is a convenience in-memory round-trip helper used by tests and by
// callers that stage a record before streaming it to disk.
func Buffer() *bytes.Buffer { return new(bytes.Buffer) }
