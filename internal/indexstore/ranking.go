package indexstore

// rankLess implements the find/refs ranking order from spec §4.D:
// exact case match beats case-insensitive, a satisfied kind filter beats a
// miss, shallower paths beat deeper ones, then lexicographic path, then
// line number. Ported from the comparator shape the teacher's query
// ranking used, generalized to this store's candidate fields.
func rankLess(iExact, iKindOK bool, iDepth int, iEntry ResultEntry, jExact, jKindOK bool, jDepth int, jEntry ResultEntry) bool {
	if iExact != jExact {
		return iExact
	}
	if iKindOK != jKindOK {
		return iKindOK
	}
	if iDepth != jDepth {
		return iDepth < jDepth
	}
	if iEntry.Path != jEntry.Path {
		return iEntry.Path < jEntry.Path
	}
	return iEntry.Line < jEntry.Line
}
