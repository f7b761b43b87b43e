package value

import "fmt"

// tableEntry is a heap entry: a flat, row-major array of cells plus the
// dimension vector that shapes it.
type tableEntry struct {
	Dimensions []int
	Cells      []Value
	Marked     bool
}

func extentProduct(dims []int) int {
	p := 1
	for _, d := range dims {
		p *= d
	}
	return p
}

func newTable(dims []int) *tableEntry {
	cells := make([]Value, extentProduct(dims))
	for i := range cells {
		cells[i] = Uninitialized
	}
	return &tableEntry{Dimensions: append([]int(nil), dims...), Cells: cells}
}

// rowMajorIndex folds per-dimension indices into a flat cell offset, per
// spec.md §3: idx = fold_left(dim_i, acc -> acc*extent_i + dim_i, 0).
func rowMajorIndex(dims, indices []int) int {
	idx := 0
	for i, extent := range dims {
		idx = idx*extent + indices[i]
	}
	return idx
}

// Manager owns every live Table, keyed by an opaque Handle, and performs
// mark-sweep collection over that heap. It is single-threaded, matching
// the evaluator's single-threaded access to it (spec.md §5).
type Manager struct {
	heap          map[Handle]*tableEntry
	nextHandle    Handle
	creations     int
	gcThreshold   int
	lastMarked    int
	lastSwept     int
	lastHeapSize  int
	gcCycles      int
}

// NewManager creates an empty table heap. gcThreshold is the number of
// table creations between automatic mark-sweep cycles (spec.md §4.3: 20).
func NewManager(gcThreshold int) *Manager {
	if gcThreshold <= 0 {
		gcThreshold = 20
	}
	return &Manager{
		heap:        make(map[Handle]*tableEntry),
		gcThreshold: gcThreshold,
	}
}

// Create allocates a new table with the given dimensions, cells set to
// Uninitialized, and returns a fresh Table value with a zero offset
// vector. It reports whether the creation counter crossed the GC
// threshold, so the caller can run Collect with the current root set.
func (m *Manager) Create(dims []int) (Value, bool) {
	h := m.allocHandle()
	m.heap[h] = newTable(dims)
	m.creations++
	due := m.creations%m.gcThreshold == 0
	return Table(h, make([]int, len(dims))), due
}

func (m *Manager) allocHandle() Handle {
	for {
		h := m.nextHandle
		m.nextHandle++
		if m.nextHandle == NoHandle {
			m.nextHandle = 0
		}
		if _, taken := m.heap[h]; !taken && h != NoHandle {
			return h
		}
	}
}

func (m *Manager) lookup(h Handle) (*tableEntry, error) {
	t, ok := m.heap[h]
	if !ok {
		return nil, fmt.Errorf("table handle %d does not exist", h)
	}
	return t, nil
}

// Dimensions returns the extent vector of the table a Value refers to.
func (m *Manager) Dimensions(v Value) ([]int, error) {
	t, err := m.lookup(v.Handle)
	if err != nil {
		return nil, err
	}
	return t.Dimensions, nil
}

// resolveIndices applies a Value's offset vector to caller-supplied
// indices and bounds-checks the result against the table's extents.
func (m *Manager) resolveIndices(v Value, t *tableEntry, indices []int) ([]int, error) {
	if len(t.Dimensions) != len(v.Offset) || len(v.Offset) != len(indices) {
		return nil, fmt.Errorf("dimension count mismatch: table has %d, offset has %d, indices has %d",
			len(t.Dimensions), len(v.Offset), len(indices))
	}
	resolved := make([]int, len(indices))
	for i, idx := range indices {
		r := idx + v.Offset[i]
		if r < 0 || r >= t.Dimensions[i] {
			return nil, fmt.Errorf("index %d out of bounds for dimension %d (extent %d)", r, i, t.Dimensions[i])
		}
		resolved[i] = r
	}
	return resolved, nil
}

// Get reads a cell, applying v's offset vector to indices.
func (m *Manager) Get(v Value, indices []int) (Value, error) {
	t, err := m.lookup(v.Handle)
	if err != nil {
		return Value{}, err
	}
	resolved, err := m.resolveIndices(v, t, indices)
	if err != nil {
		return Value{}, err
	}
	cell := t.Cells[rowMajorIndex(t.Dimensions, resolved)]
	if cell.IsUninitialized() {
		return Value{}, errUninitCell
	}
	return cell, nil
}

// errUninitCell is a sentinel distinguishable from ordinary lookup
// failures; eval maps it onto kerr.UninitCell.
var errUninitCell = fmt.Errorf("cell is uninitialized")

// IsUninitCell reports whether err is the UninitCell sentinel from Get.
func IsUninitCell(err error) bool { return err == errUninitCell }

// Put writes a cell, initializing it if it was Uninitialized.
func (m *Manager) Put(v Value, indices []int, val Value) error {
	t, err := m.lookup(v.Handle)
	if err != nil {
		return err
	}
	resolved, err := m.resolveIndices(v, t, indices)
	if err != nil {
		return err
	}
	t.Cells[rowMajorIndex(t.Dimensions, resolved)] = val
	return nil
}

// WriteRaw copies data into the first len(data) cells in row-major
// order, used to materialize a Table literal.
func (m *Manager) WriteRaw(v Value, data []Value) error {
	t, err := m.lookup(v.Handle)
	if err != nil {
		return err
	}
	if len(data) > len(t.Cells) {
		return fmt.Errorf("table literal has %d values, table only holds %d", len(data), len(t.Cells))
	}
	copy(t.Cells, data)
	return nil
}

// Slice produces a new Table value sharing v's handle, with offsets
// advanced by delta, after checking every resulting offset is still a
// legal starting index into the underlying table (spec.md §4.4 SLICE).
func (m *Manager) Slice(v Value, delta []int) (Value, error) {
	t, err := m.lookup(v.Handle)
	if err != nil {
		return Value{}, err
	}
	if len(delta) != len(v.Offset) {
		return Value{}, fmt.Errorf("slice expects %d offsets, got %d", len(v.Offset), len(delta))
	}
	next := make([]int, len(delta))
	for i := range delta {
		next[i] = v.Offset[i] + delta[i]
		if next[i] < 0 || next[i] >= t.Dimensions[i] {
			return Value{}, fmt.Errorf("slice offset %d out of range for dimension %d (extent %d)", next[i], i, t.Dimensions[i])
		}
	}
	return Table(v.Handle, next), nil
}

// Exists reports whether a handle is still live in the heap, used by
// tests and the debugger's heap panel.
func (m *Manager) Exists(h Handle) bool {
	_, ok := m.heap[h]
	return ok
}

// Size returns the number of live tables, for diagnostics.
func (m *Manager) Size() int { return len(m.heap) }

// Stats exposes the counters the last Collect produced, for the
// debugger's heap panel and --verbose logging.
func (m *Manager) Stats() (cycles, marked, swept, heapSize int) {
	return m.gcCycles, m.lastMarked, m.lastSwept, m.lastHeapSize
}

// Collect performs one non-incremental mark-sweep cycle. roots is the
// set of handles reachable directly from environment bindings; Collect
// walks table cells transitively from there.
func (m *Manager) Collect(roots []Handle) {
	for _, t := range m.heap {
		t.Marked = false
	}

	grey := make([]Handle, 0, len(roots))
	grey = append(grey, roots...)
	seen := make(map[Handle]bool, len(roots))

	for len(grey) > 0 {
		h := grey[len(grey)-1]
		grey = grey[:len(grey)-1]
		if seen[h] {
			continue
		}
		seen[h] = true
		t, ok := m.heap[h]
		if !ok || t.Marked {
			continue
		}
		t.Marked = true
		for _, cell := range t.Cells {
			if cell.Kind == KindTable {
				grey = append(grey, cell.Handle)
			}
		}
	}

	swept := 0
	for h, t := range m.heap {
		if !t.Marked {
			delete(m.heap, h)
			swept++
		}
	}

	m.gcCycles++
	m.lastMarked = len(seen)
	m.lastSwept = swept
	m.lastHeapSize = len(m.heap)
}
