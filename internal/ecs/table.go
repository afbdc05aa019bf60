package ecs

// Table stores every entity of one archetype. Columns are parallel to the
// sorted signature.
type Table struct {
	sig      []ComponentID
	cols     []column
	entities []Entity
}

// Signature returns the sorted component ids of the table. Callers must
// not modify it.
func (t *Table) Signature() []ComponentID { return t.sig }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.entities) }

// Entities borrows the row-to-entity mapping.
func (t *Table) Entities() []Entity { return t.entities }

// ContainsAll reports whether the table's signature is a superset of ids,
// which must be sorted ascending. Linear merge over both lists.
func (t *Table) ContainsAll(ids []ComponentID) bool {
	i := 0
	for _, want := range ids {
		for i < len(t.sig) && t.sig[i] < want {
			i++
		}
		if i == len(t.sig) || t.sig[i] != want {
			return false
		}
		i++
	}
	return true
}

func (t *Table) columnIndex(id ComponentID) int {
	lo, hi := 0, len(t.sig)
	for lo < hi {
		m := (lo + hi) / 2
		switch {
		case t.sig[m] == id:
			return m
		case t.sig[m] < id:
			lo = m + 1
		default:
			hi = m
		}
	}
	return -1
}

func (t *Table) appendEntity(e Entity) int {
	t.entities = append(t.entities, e)
	return len(t.entities) - 1
}

type column interface {
	appendFrom(src column, row int)
	swapRemove(row int)
}

type typedColumn[T any] struct {
	data []T
}

func (c *typedColumn[T]) appendFrom(src column, row int) {
	c.data = append(c.data, src.(*typedColumn[T]).data[row])
}

func (c *typedColumn[T]) swapRemove(row int) {
	last := len(c.data) - 1
	if row != last {
		c.data[row] = c.data[last]
	}
	var zero T
	c.data[last] = zero
	c.data = c.data[:last]
}
