// Package ecs is a small archetype-table component store. Entities with the
// same component set share a table whose components live in contiguous
// per-type columns, so systems iterate plain slices.
package ecs

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"slices"
)

// ComponentID identifies a registered component type.
type ComponentID uint16

// Entity is a generation-tagged handle. A handle whose generation no longer
// matches the slot is stale and every operation on it is ignored.
type Entity struct {
	Index uint32
	Gen   uint32
}

type record struct {
	gen   uint32
	alive bool
	table int
	row   int
}

// World owns every table and entity slot. It is not safe for concurrent
// structural mutation; readers that borrow columns must not overlap with
// writers.
type World struct {
	types     map[reflect.Type]ComponentID
	factories []func() column

	tables     []*Table
	tableIndex map[string]int

	records []record
	free    []uint32

	version uint64
}

// NewWorld returns an empty world holding only the empty-signature table.
func NewWorld() *World {
	w := &World{
		types:      make(map[reflect.Type]ComponentID),
		tableIndex: make(map[string]int),
	}
	w.tableFor(nil)
	return w
}

// Register assigns T a component id. Registering twice returns the same id.
func Register[T any](w *World) ComponentID {
	rt := reflect.TypeFor[T]()
	if id, ok := w.types[rt]; ok {
		return id
	}
	id := ComponentID(len(w.factories))
	w.types[rt] = id
	w.factories = append(w.factories, func() column { return &typedColumn[T]{} })
	return id
}

// ComponentOf returns the id of T, or false when T was never registered.
func ComponentOf[T any](w *World) (ComponentID, bool) {
	id, ok := w.types[reflect.TypeFor[T]()]
	return id, ok
}

func mustComponent[T any](w *World) ComponentID {
	id, ok := ComponentOf[T](w)
	if !ok {
		panic(fmt.Sprintf("ecs: component %v not registered", reflect.TypeFor[T]()))
	}
	return id
}

// Version changes on every structural mutation: entity creation and
// destruction, component add and remove. Set does not change it.
func (w *World) Version() uint64 { return w.version }

// TableCount returns the number of archetype tables, including empty ones.
func (w *World) TableCount() int { return len(w.tables) }

// Table returns the i-th table in creation order.
func (w *World) Table(i int) *Table { return w.tables[i] }

// CreateEntity allocates an entity with no components.
func (w *World) CreateEntity() Entity {
	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		idx = uint32(len(w.records))
		w.records = append(w.records, record{})
	}
	rec := &w.records[idx]
	rec.gen++
	rec.alive = true

	e := Entity{Index: idx, Gen: rec.gen}
	t := w.tables[0]
	rec.table = 0
	rec.row = t.appendEntity(e)
	w.version++
	return e
}

// Alive reports whether e refers to a live entity.
func (w *World) Alive(e Entity) bool {
	if int(e.Index) >= len(w.records) {
		return false
	}
	rec := w.records[e.Index]
	return rec.alive && rec.gen == e.Gen
}

// DestroyEntity removes e and all its components.
func (w *World) DestroyEntity(e Entity) {
	if !w.Alive(e) {
		return
	}
	rec := &w.records[e.Index]
	w.removeRow(w.tables[rec.table], rec.row)
	rec.alive = false
	w.free = append(w.free, e.Index)
	w.version++
}

// Len returns the number of live entities.
func (w *World) Len() int {
	n := 0
	for _, t := range w.tables {
		n += t.Len()
	}
	return n
}

// Add attaches v to e. If e already has T the value is overwritten in
// place and the version does not change.
func Add[T any](w *World, e Entity, v T) {
	if !w.Alive(e) {
		return
	}
	id := Register[T](w)
	rec := &w.records[e.Index]
	src := w.tables[rec.table]
	if ci := src.columnIndex(id); ci >= 0 {
		src.cols[ci].(*typedColumn[T]).data[rec.row] = v
		return
	}

	sig := make([]ComponentID, 0, len(src.sig)+1)
	sig = append(sig, src.sig...)
	pos, _ := slices.BinarySearch(sig, id)
	sig = slices.Insert(sig, pos, id)

	dstIdx := w.tableFor(sig)
	dst := w.tables[dstIdx]
	row := w.moveRow(e, src, rec.row, dst)
	col := dst.cols[dst.columnIndex(id)].(*typedColumn[T])
	col.data = append(col.data, v)

	rec = &w.records[e.Index]
	rec.table = dstIdx
	rec.row = row
	w.version++
}

// Remove detaches T from e. Missing components are ignored.
func Remove[T any](w *World, e Entity) {
	if !w.Alive(e) {
		return
	}
	id, ok := ComponentOf[T](w)
	if !ok {
		return
	}
	rec := &w.records[e.Index]
	src := w.tables[rec.table]
	if src.columnIndex(id) < 0 {
		return
	}

	sig := make([]ComponentID, 0, len(src.sig)-1)
	for _, c := range src.sig {
		if c != id {
			sig = append(sig, c)
		}
	}
	dstIdx := w.tableFor(sig)
	dst := w.tables[dstIdx]
	row := w.moveRow(e, src, rec.row, dst)

	rec = &w.records[e.Index]
	rec.table = dstIdx
	rec.row = row
	w.version++
}

// Set overwrites an existing component in place. It returns false when e
// is stale or has no T.
func Set[T any](w *World, e Entity, v T) bool {
	if !w.Alive(e) {
		return false
	}
	id, ok := ComponentOf[T](w)
	if !ok {
		return false
	}
	rec := w.records[e.Index]
	t := w.tables[rec.table]
	ci := t.columnIndex(id)
	if ci < 0 {
		return false
	}
	t.cols[ci].(*typedColumn[T]).data[rec.row] = v
	return true
}

// Get returns a copy of e's T component.
func Get[T any](w *World, e Entity) (T, bool) {
	var zero T
	if !w.Alive(e) {
		return zero, false
	}
	id, ok := ComponentOf[T](w)
	if !ok {
		return zero, false
	}
	rec := w.records[e.Index]
	t := w.tables[rec.table]
	ci := t.columnIndex(id)
	if ci < 0 {
		return zero, false
	}
	return t.cols[ci].(*typedColumn[T]).data[rec.row], true
}

// Column borrows t's column of T. The slice is valid until the next
// structural mutation of w. It returns nil when t does not store T.
func Column[T any](w *World, t *Table) []T {
	id := mustComponent[T](w)
	ci := t.columnIndex(id)
	if ci < 0 {
		return nil
	}
	return t.cols[ci].(*typedColumn[T]).data
}

// tableFor returns the index of the table with the given sorted
// signature, creating it on first use.
func (w *World) tableFor(sig []ComponentID) int {
	key := signatureKey(sig)
	if i, ok := w.tableIndex[key]; ok {
		return i
	}
	t := &Table{sig: slices.Clone(sig), cols: make([]column, len(sig))}
	for i, id := range sig {
		t.cols[i] = w.factories[id]()
	}
	w.tables = append(w.tables, t)
	i := len(w.tables) - 1
	w.tableIndex[key] = i
	return i
}

// moveRow copies the shared columns of src[row] into dst, removes the row
// from src and returns the new row in dst. Columns present only in dst are
// left for the caller to append.
func (w *World) moveRow(e Entity, src *Table, row int, dst *Table) int {
	for si, id := range src.sig {
		if di := dst.columnIndex(id); di >= 0 {
			dst.cols[di].appendFrom(src.cols[si], row)
		}
	}
	newRow := dst.appendEntity(e)
	w.removeRow(src, row)
	return newRow
}

// removeRow swap-removes row from t and patches the moved entity's record.
func (w *World) removeRow(t *Table, row int) {
	last := len(t.entities) - 1
	for _, c := range t.cols {
		c.swapRemove(row)
	}
	if row != last {
		moved := t.entities[last]
		t.entities[row] = moved
		w.records[moved.Index].row = row
	}
	t.entities = t.entities[:last]
}

func signatureKey(sig []ComponentID) string {
	b := make([]byte, 2*len(sig))
	for i, id := range sig {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(id))
	}
	return string(b)
}
