package decomposer

import "kodit/internal/kerr"

// rewriteArrays walks a logical line's top-level items left to right,
// pairing each Array whose contents are entirely numeric with the
// array immediately following it into a Table literal (spec.md §4.1).
// Arrays that don't qualify as dimension lists are kept as Array items,
// recursively rewritten, so tables can nest inside ordinary arrays and
// vice versa.
func rewriteArrays(items []Item) ([]Item, error) {
	result := make([]Item, 0, len(items))
	i := 0
	for i < len(items) {
		it := items[i]
		if it.Kind != ItemArray {
			result = append(result, it)
			i++
			continue
		}

		rewrittenChildren, err := rewriteArrays(it.Items)
		if err != nil {
			return nil, err
		}
		it.Items = rewrittenChildren

		if !isDimensionCandidate(it.Items) {
			result = append(result, it)
			i++
			continue
		}

		if i+1 >= len(items) || items[i+1].Kind != ItemArray {
			return nil, kerr.New(kerr.BadTableLiteral, 0, "array of numbers must be followed by a data array")
		}

		dataArray := items[i+1]
		data, err := rewriteArrays(dataArray.Items)
		if err != nil {
			return nil, err
		}

		dims, err := toDimensions(it.Items)
		if err != nil {
			return nil, err
		}

		result = append(result, Item{Kind: ItemTable, Dimensions: dims, Data: data})
		i += 2
	}
	return result, nil
}

// isDimensionCandidate reports whether an array's contents are entirely
// Number literals, making it eligible to pair with a following array as
// a table's dimension list. An empty array never qualifies.
func isDimensionCandidate(items []Item) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if it.Kind != ItemNumber {
			return false
		}
	}
	return true
}

func toDimensions(items []Item) ([]int, error) {
	dims := make([]int, len(items))
	for i, it := range items {
		if it.Kind != ItemNumber {
			return nil, kerr.New(kerr.BadTableLiteral, 0, "table dimension atoms must be numeric")
		}
		dims[i] = int(it.Num + 0.5)
	}
	return dims, nil
}
