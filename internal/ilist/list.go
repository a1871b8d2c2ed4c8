// Package ilist provides an intrusive doubly-linked list. Entries embed a
// Node and are added to or removed from a List in O(1) time with no
// additional memory allocations.
package ilist

// Node is the link embedded in a list entry. A Node that is not on any list
// points at itself (or is zero), which makes Remove on it a no-op.
type Node[T any] struct {
	next  *Node[T]
	prev  *Node[T]
	owner *T
}

// Init unlinks n and records the entry that contains it.
//
//go:nosplit
func (n *Node[T]) Init(owner *T) {
	n.next = n
	n.prev = n
	n.owner = owner
}

// Owner returns the entry n was initialized with.
//
//go:nosplit
func (n *Node[T]) Owner() *T {
	return n.owner
}

// Linked reports whether n is currently on a list.
//
//go:nosplit
func (n *Node[T]) Linked() bool {
	return n.next != nil && n.next != n
}

// List is a circular list anchored at a sentinel node.
//
// The zero value for List is an empty list ready to use.
//
// To iterate over a list (where l is a List):
//
//	for n := l.Front(); n != nil; n = l.Next(n) {
//		// do something with n.Owner().
//	}
type List[T any] struct {
	root Node[T]
}

func (l *List[T]) lazyInit() {
	if l.root.next == nil {
		l.root.next = &l.root
		l.root.prev = &l.root
	}
}

// Empty returns true iff the list is empty.
//
//go:nosplit
func (l *List[T]) Empty() bool {
	return l.root.next == nil || l.root.next == &l.root
}

// Front returns the first node of l or nil.
func (l *List[T]) Front() *Node[T] {
	if l.Empty() {
		return nil
	}
	return l.root.next
}

// Next returns the node after n, or nil when n is the last one.
// n must be on l.
func (l *List[T]) Next(n *Node[T]) *Node[T] {
	if n.next == &l.root {
		return nil
	}
	return n.next
}

// Len returns the number of nodes in the list.
//
// NOTE: This is an O(n) operation.
func (l *List[T]) Len() (count int) {
	for n := l.Front(); n != nil; n = l.Next(n) {
		count++
	}
	return count
}

// InsertAfter links n immediately after anchor. A nil anchor means the
// sentinel, so InsertAfter(nil, n) inserts at the front.
func (l *List[T]) InsertAfter(anchor, n *Node[T]) {
	l.lazyInit()
	if anchor == nil {
		anchor = &l.root
	}
	n.prev = anchor
	n.next = anchor.next
	anchor.next.prev = n
	anchor.next = n
}

// PushBack inserts n at the back of l.
func (l *List[T]) PushBack(n *Node[T]) {
	l.lazyInit()
	l.InsertAfter(l.root.prev, n)
}

// Remove unlinks n from whichever list holds it and leaves it
// self-referential. Removing an unlinked node does nothing.
//
//go:nosplit
func Remove[T any](n *Node[T]) {
	if !n.Linked() {
		return
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	n.next = n
	n.prev = n
}

// Remove unlinks n, which must be on l or unlinked.
func (l *List[T]) Remove(n *Node[T]) {
	Remove(n)
}

// Range calls fn for each entry in order until fn returns false. fn may
// remove the entry it was given.
func (l *List[T]) Range(fn func(*T) bool) {
	for n := l.Front(); n != nil; {
		next := l.Next(n)
		if !fn(n.owner) {
			return
		}
		n = next
	}
}

// Clear unlinks every node, leaving each one self-referential.
func (l *List[T]) Clear() {
	for n := l.Front(); n != nil; {
		next := l.Next(n)
		n.next = n
		n.prev = n
		n = next
	}
	l.root.next = &l.root
	l.root.prev = &l.root
}
