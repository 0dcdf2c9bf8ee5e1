// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package omap provides an insertion-order-preserving string-keyed map,
// used where iteration order is observable in output.
package omap

// Map is an ordered mapping from string keys to values of type V. The zero
// value is ready to use. Map is not safe for concurrent use.
type Map[V any] struct {
	index map[string]int
	keys  []string
	vals  []V
}

// New returns an empty ordered map.
func New[V any]() *Map[V] {
	return &Map[V]{index: make(map[string]int)}
}

// Set inserts or updates the value for key, preserving the key's original
// position if it already exists.
func (m *Map[V]) Set(key string, v V) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[key]; ok {
		m.vals[i] = v
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, v)
}

// Get returns the value for key and whether it was present.
func (m *Map[V]) Get(key string) (V, bool) {
	var zero V
	if m == nil || m.index == nil {
		return zero, false
	}
	i, ok := m.index[key]
	if !ok {
		return zero, false
	}
	return m.vals[i], true
}

// Has reports whether key is present.
func (m *Map[V]) Has(key string) bool {
	if m == nil || m.index == nil {
		return false
	}
	_, ok := m.index[key]
	return ok
}

// Delete removes key, shifting subsequent keys down by one position. It
// reports whether the key was present.
func (m *Map[V]) Delete(key string) bool {
	if m == nil || m.index == nil {
		return false
	}
	i, ok := m.index[key]
	if !ok {
		return false
	}
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.vals = append(m.vals[:i], m.vals[i+1:]...)
	delete(m.index, key)
	for k, idx := range m.index {
		if idx > i {
			m.index[k] = idx - 1
		}
	}
	return true
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order. The returned slice must not be
// mutated by the caller.
func (m *Map[V]) Keys() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// Values returns the values in the same order as Keys.
func (m *Map[V]) Values() []V {
	if m == nil {
		return nil
	}
	return m.vals
}

// Each calls fn for every entry in insertion order. fn returning false stops
// the iteration early.
func (m *Map[V]) Each(fn func(key string, v V) bool) {
	if m == nil {
		return
	}
	for i, k := range m.keys {
		if !fn(k, m.vals[i]) {
			return
		}
	}
}

// Clone returns a shallow copy with the same keys, values and order.
func (m *Map[V]) Clone() *Map[V] {
	n := New[V]()
	if m == nil {
		return n
	}
	n.keys = append([]string(nil), m.keys...)
	n.vals = append([]V(nil), m.vals...)
	n.index = make(map[string]int, len(m.index))
	for k, v := range m.index {
		n.index[k] = v
	}
	return n
}
