package pmmr

import "sort"

// PruneList is the ordered set of MMR positions that are roots of fully
// pruned subtrees. For every root in PrunedNodes, the entire closed subtree
// beneath it -- the root itself and all of its descendants -- has been
// physically removed from the backing data file and is no longer
// addressable. Two sibling roots at the same height coalesce into their
// shared parent as soon as both are pruned, so the persisted list grows
// logarithmically with the number of positions ever pruned rather than
// linearly.
//
// PruneList is the storage engine's only collaborator for translating a
// live MMR position into a byte offset; the tree algebra that decides
// *which* positions are safe to prune belongs to the caller.
type PruneList struct {
	// PrunedNodes is sorted ascending with no duplicates. It is the only
	// state persisted to pmmr_pruned.bin.
	PrunedNodes []uint64
}

// New returns an empty PruneList.
func New() *PruneList {
	return &PruneList{}
}

// Len returns the number of roots currently tracked.
func (p *PruneList) Len() int {
	return len(p.PrunedNodes)
}

// search returns the insertion index for pos in the sorted node list, and
// whether pos is already present there.
func search(nodes []uint64, pos uint64) (int, bool) {
	idx := sort.Search(len(nodes), func(i int) bool { return nodes[i] >= pos })
	return idx, idx < len(nodes) && nodes[idx] == pos
}

// subtreeRange returns the leftmost position and size (in positions) of the
// perfect subtree rooted at root, root included.
func subtreeRange(root uint64) (leftmost, size uint64) {
	height := PosHeight(root)
	size = (uint64(1) << (height + 1)) - 1
	leftmost = root - size + 1
	return leftmost, size
}

// PrunedPos reports whether position is covered by an existing root's
// subtree, either because position is itself a root or because it is a
// descendant of one. It returns the index of the covering root and true, or
// (-1, false) if position remains fully addressable.
func (p *PruneList) PrunedPos(position uint64) (int, bool) {
	nodes := p.PrunedNodes
	idx := sort.Search(len(nodes), func(i int) bool { return nodes[i] >= position })
	if idx >= len(nodes) {
		return -1, false
	}
	if nodes[idx] == position {
		return idx, true
	}
	// Subtree roots always sit at a greater position than every one of
	// their descendants, so the only root that could still cover position
	// is the first one strictly beyond it.
	leftmost, _ := subtreeRange(nodes[idx])
	if position >= leftmost {
		return idx, true
	}
	return -1, false
}

// GetShift returns the number of physically removed records at positions
// strictly less than position, or false if position itself lies within a
// pruned subtree and so is no longer addressable.
func (p *PruneList) GetShift(position uint64) (uint64, bool) {
	if _, ok := p.PrunedPos(position); ok {
		return 0, false
	}
	var shift uint64
	for _, root := range p.PrunedNodes {
		if root >= position {
			break
		}
		_, size := subtreeRange(root)
		shift += size
	}
	return shift, true
}

// Add inserts a newly pruned position, coalescing it with an existing
// sibling root into their shared parent whenever that sibling has itself
// already been fully pruned at the same height. Adding a position already
// covered by an existing root is a no-op.
func (p *PruneList) Add(pos uint64) {
	for {
		if _, covered := p.PrunedPos(pos); covered {
			return
		}
		idx, _ := search(p.PrunedNodes, pos)
		height := PosHeight(pos)
		sib := SiblingPos(pos, height)
		sIdx, sOk := search(p.PrunedNodes, sib)
		if !sOk {
			p.PrunedNodes = append(p.PrunedNodes, 0)
			copy(p.PrunedNodes[idx+1:], p.PrunedNodes[idx:])
			p.PrunedNodes[idx] = pos
			return
		}
		p.PrunedNodes = append(p.PrunedNodes[:sIdx], p.PrunedNodes[sIdx+1:]...)
		pos = ParentPos(pos, height)
	}
}
