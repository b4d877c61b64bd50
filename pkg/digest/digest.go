// Package digest computes stable fingerprints of dependency lists.
//
// Of walks each value structurally, so two lists that are deeply equal
// digest to the same number. Pointers are followed once per walk: a cycle
// hashes as a back-reference marker instead of recursing, and nesting past
// MaxDepth is truncated. Functions and channels hash by identity.
package digest

import (
	"encoding/binary"
	"math"
	"reflect"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// MaxDepth bounds how deep Of descends into nested values.
const MaxDepth = 32

// Type tags keep e.g. int(1) and "1" from colliding.
const (
	tagNil byte = iota
	tagBool
	tagInt
	tagUint
	tagFloat
	tagComplex
	tagString
	tagSeq
	tagMap
	tagStruct
	tagPointer
	tagIdentity
	tagCycle
	tagTruncated
)

// Of returns the fingerprint of values.
func Of(values ...any) uint64 {
	w := walker{
		d:       xxhash.New(),
		visited: make(map[uintptr]struct{}),
	}
	w.tag(tagSeq)
	w.uint(uint64(len(values)))
	for _, v := range values {
		w.value(reflect.ValueOf(v), 0)
	}
	return w.d.Sum64()
}

type walker struct {
	d       *xxhash.Digest
	visited map[uintptr]struct{}
	buf     [8]byte
}

func (w *walker) tag(t byte) {
	w.buf[0] = t
	w.d.Write(w.buf[:1])
}

func (w *walker) uint(u uint64) {
	binary.LittleEndian.PutUint64(w.buf[:], u)
	w.d.Write(w.buf[:])
}

func (w *walker) string(s string) {
	w.uint(uint64(len(s)))
	w.d.WriteString(s)
}

func (w *walker) value(v reflect.Value, depth int) {
	if !v.IsValid() {
		w.tag(tagNil)
		return
	}
	if depth > MaxDepth {
		w.tag(tagTruncated)
		return
	}
	w.string(v.Type().String())

	switch v.Kind() {
	case reflect.Bool:
		w.tag(tagBool)
		if v.Bool() {
			w.uint(1)
		} else {
			w.uint(0)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		w.tag(tagInt)
		w.uint(uint64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		w.tag(tagUint)
		w.uint(v.Uint())
	case reflect.Float32, reflect.Float64:
		w.tag(tagFloat)
		w.uint(math.Float64bits(v.Float()))
	case reflect.Complex64, reflect.Complex128:
		w.tag(tagComplex)
		c := v.Complex()
		w.uint(math.Float64bits(real(c)))
		w.uint(math.Float64bits(imag(c)))
	case reflect.String:
		w.tag(tagString)
		w.string(v.String())
	case reflect.Slice:
		if v.IsNil() {
			w.tag(tagNil)
			return
		}
		if w.enter(v.Pointer()) {
			return
		}
		defer w.leave(v.Pointer())
		w.seq(v, depth)
	case reflect.Array:
		w.seq(v, depth)
	case reflect.Map:
		if v.IsNil() {
			w.tag(tagNil)
			return
		}
		if w.enter(v.Pointer()) {
			return
		}
		defer w.leave(v.Pointer())
		w.mapping(v, depth)
	case reflect.Struct:
		w.tag(tagStruct)
		for i := 0; i < v.NumField(); i++ {
			w.value(v.Field(i), depth+1)
		}
	case reflect.Pointer:
		if v.IsNil() {
			w.tag(tagNil)
			return
		}
		if w.enter(v.Pointer()) {
			return
		}
		defer w.leave(v.Pointer())
		w.tag(tagPointer)
		w.value(v.Elem(), depth+1)
	case reflect.Interface:
		w.value(v.Elem(), depth)
	default:
		// Func, Chan and UnsafePointer hash by identity.
		w.tag(tagIdentity)
		w.uint(uint64(v.Pointer()))
	}
}

// enter marks p as being walked. It reports true, after writing a cycle
// marker, if p is already on the current path.
func (w *walker) enter(p uintptr) bool {
	if _, ok := w.visited[p]; ok {
		w.tag(tagCycle)
		return true
	}
	w.visited[p] = struct{}{}
	return false
}

func (w *walker) leave(p uintptr) {
	delete(w.visited, p)
}

func (w *walker) seq(v reflect.Value, depth int) {
	w.tag(tagSeq)
	w.uint(uint64(v.Len()))
	for i := 0; i < v.Len(); i++ {
		w.value(v.Index(i), depth+1)
	}
}

// mapping hashes each entry separately and combines the sorted entry
// hashes, so iteration order does not matter.
func (w *walker) mapping(v reflect.Value, depth int) {
	entries := make([]uint64, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		sub := walker{d: xxhash.New(), visited: w.visited}
		sub.value(iter.Key(), depth+1)
		sub.value(iter.Value(), depth+1)
		entries = append(entries, sub.d.Sum64())
	}
	slices.Sort(entries)

	w.tag(tagMap)
	w.uint(uint64(len(entries)))
	for _, e := range entries {
		w.uint(e)
	}
}
