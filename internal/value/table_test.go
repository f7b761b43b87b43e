package value

import "testing"

func TestCreateGetPut(t *testing.T) {
	m := NewManager(20)
	tbl, _ := m.Create([]int{2, 2})

	if err := m.Put(tbl, []int{0, 0}, Number(10)); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	got, err := m.Get(tbl, []int{0, 0})
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Kind != KindNumber || got.Num != 10 {
		t.Errorf("expected Number(10), got %+v", got)
	}
}

func TestGetUninitializedCell(t *testing.T) {
	m := NewManager(20)
	tbl, _ := m.Create([]int{1})
	_, err := m.Get(tbl, []int{0})
	if !IsUninitCell(err) {
		t.Errorf("expected uninit-cell error, got %v", err)
	}
}

func TestOutOfBounds(t *testing.T) {
	m := NewManager(20)
	tbl, _ := m.Create([]int{2})
	if err := m.Put(tbl, []int{2}, Number(1)); err == nil {
		t.Error("expected out-of-bounds error")
	}
}

func TestSliceAliasesStorage(t *testing.T) {
	m := NewManager(20)
	tbl, _ := m.Create([]int{2, 2})
	_ = m.Put(tbl, []int{0, 0}, Number(10))
	_ = m.Put(tbl, []int{0, 1}, Number(20))
	_ = m.Put(tbl, []int{1, 0}, Number(30))
	_ = m.Put(tbl, []int{1, 1}, Number(40))

	sliced, err := m.Slice(tbl, []int{1, 0})
	if err != nil {
		t.Fatalf("slice failed: %v", err)
	}
	got, err := m.Get(sliced, []int{0, 1})
	if err != nil {
		t.Fatalf("get through slice failed: %v", err)
	}
	if got.Num != 40 {
		t.Errorf("expected 40 through slice, got %v", got.Num)
	}

	// Writes through the base table are visible through the slice alias.
	_ = m.Put(tbl, []int{1, 1}, Number(99))
	got, _ = m.Get(sliced, []int{0, 1})
	if got.Num != 99 {
		t.Errorf("expected alias to observe write, got %v", got.Num)
	}
}

func TestSliceOutOfRange(t *testing.T) {
	m := NewManager(20)
	tbl, _ := m.Create([]int{2, 2})
	if _, err := m.Slice(tbl, []int{2, 0}); err == nil {
		t.Error("expected slice-out-of-range error")
	}
}

func TestWriteRaw(t *testing.T) {
	m := NewManager(20)
	tbl, _ := m.Create([]int{3})
	if err := m.WriteRaw(tbl, []Value{Number(1), Number(2), Number(3)}); err != nil {
		t.Fatalf("write raw failed: %v", err)
	}
	if err := m.WriteRaw(tbl, []Value{Number(1), Number(2), Number(3), Number(4)}); err == nil {
		t.Error("expected failure writing more values than cells")
	}
}

func TestCollectRetainsReachable(t *testing.T) {
	m := NewManager(20)
	keep, _ := m.Create([]int{1})
	discard, _ := m.Create([]int{1})
	_ = discard

	m.Collect([]Handle{keep.Handle})

	if !m.Exists(keep.Handle) {
		t.Error("reachable table was collected")
	}
	if m.Exists(discard.Handle) {
		t.Error("unreachable table survived collection")
	}
}

func TestCollectFollowsCellReferences(t *testing.T) {
	m := NewManager(20)
	inner, _ := m.Create([]int{1})
	outer, _ := m.Create([]int{1})
	_ = m.Put(outer, []int{0}, inner)

	m.Collect([]Handle{outer.Handle})

	if !m.Exists(inner.Handle) {
		t.Error("table reachable only through a cell was collected")
	}
}

func TestCollectHandlesCycles(t *testing.T) {
	m := NewManager(20)
	a, _ := m.Create([]int{1})
	b, _ := m.Create([]int{1})
	_ = m.Put(a, []int{0}, b)
	_ = m.Put(b, []int{0}, a)

	m.Collect([]Handle{a.Handle})

	if !m.Exists(a.Handle) || !m.Exists(b.Handle) {
		t.Error("cyclic but reachable tables were collected")
	}
}

func TestCreateTriggersGCEvery20(t *testing.T) {
	m := NewManager(20)
	var due bool
	for i := 0; i < 20; i++ {
		_, due = m.Create([]int{1})
	}
	if !due {
		t.Error("expected the 20th creation to flag GC as due")
	}
}

func TestDisplayAndTruthiness(t *testing.T) {
	if Number(0).Truthy() {
		t.Error("0 should be falsy")
	}
	if !Number(1).Truthy() {
		t.Error("1 should be truthy")
	}
	if !String("").Truthy() {
		t.Error("empty string should be truthy")
	}
	if Number(3).Display() != "3" {
		t.Errorf("expected \"3\", got %q", Number(3).Display())
	}
}
