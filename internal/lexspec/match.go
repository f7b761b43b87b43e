package lexspec

import "kodit/internal/decomposer"

// matchPattern matches a surface pattern against a line's argument
// items (everything after the Command item), per the recursive rule in
// spec.md §4.2. It returns the captured items keyed by position.
func matchPattern(pattern []Matcher, items []decomposer.Item) (map[int]decomposer.Item, bool) {
	return matchRec(pattern, items, 0)
}

func matchRec(pattern []Matcher, items []decomposer.Item, maxArg int) (map[int]decomposer.Item, bool) {
	if len(pattern) == 0 {
		return captureRemaining(items, maxArg), true
	}

	head := pattern[0]
	if head.Kind == MatchRest {
		return captureRemaining(items, maxArg), true
	}

	if len(items) == 0 {
		return nil, false
	}

	switch head.Kind {
	case MatchSymbol:
		if items[0].Kind == decomposer.ItemLabel && items[0].Text == head.Symbol {
			return matchRec(pattern[1:], items[1:], maxArg)
		}
		return nil, false

	case MatchArgument:
		next := maxArg
		if head.Index > next {
			next = head.Index
		}
		captures, ok := matchRec(pattern[1:], items[1:], next)
		if !ok {
			return nil, false
		}
		captures[head.Index] = items[0]
		return captures, true

	default:
		return nil, false
	}
}

func captureRemaining(items []decomposer.Item, maxArg int) map[int]decomposer.Item {
	captures := make(map[int]decomposer.Item, len(items))
	pos := maxArg + 1
	for _, it := range items {
		captures[pos] = it
		pos++
	}
	return captures
}

// sortedArgs orders captured items by their position key.
func sortedArgs(captures map[int]decomposer.Item) []decomposer.Item {
	keys := make([]int, 0, len(captures))
	for k := range captures {
		keys = append(keys, k)
	}
	// Small N (a handful of arguments per line): insertion sort keeps
	// this allocation-free and avoids pulling in sort for a few ints.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	args := make([]decomposer.Item, len(keys))
	for i, k := range keys {
		args[i] = captures[k]
	}
	return args
}
