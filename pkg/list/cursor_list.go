// This module implements a doubly linked list that remembers the most recently touched node (the cursor).
// Positional lookups start from whichever of head, cursor, or tail is closest to the requested index, so clustered
// or sequential access patterns walk only a few links instead of half the list.
//
// Cursor rules:
//   - Reading or writing any index other than the first or last one moves the cursor there (unless asked not to).
//   - PushFront shifts the cursor index by one; PushBack never touches the cursor.
//   - Removing the cursor node moves the cursor to its successor, or to the new tail if it was the last node.
//
// A CursorList is not safe for concurrent use; callers serialize access themselves.

package list

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

var (
	// ErrOutOfRange is returned for any index outside [0, Len()) and for cursor operations on an empty list.
	ErrOutOfRange = errors.New("index out of range")
	// ErrBrokenInvariant is returned when the list finds its own links inconsistent; it always means a bug.
	ErrBrokenInvariant = errors.New("list invariant is broken")
)

// node is a single element of a CursorList.
type node[V any] struct {
	next  *node[V]
	prev  *node[V]
	value V
}

// CursorList is an index-addressable doubly linked list with a movable cursor.
// The zero value is an empty list ready to use.
type CursorList[V comparable] struct {
	head   *node[V]
	tail   *node[V]
	cursor *node[V] // Most recently touched node; nil iff the list is empty.
	// cursorIndex is the position of `cursor`. Kept at 0 while the list is empty.
	cursorIndex int
	size        int
}

// New returns an empty list.
func New[V comparable]() *CursorList[V] {
	return new(CursorList[V])
}

// FromSlice returns a list holding `values` in order, with the cursor on the middle element (len/2).
func FromSlice[V comparable](values []V) *CursorList[V] {
	l := New[V]()
	for i, value := range values {
		l.PushBack(value)
		if i == len(values)/2 {
			l.cursor, l.cursorIndex = l.tail, i
		}
	}
	l.verify("from_slice")
	return l
}

// Clone returns a deep copy of the list; the copy's cursor sits on the same index as the original's.
func (l *CursorList[V]) Clone() *CursorList[V] {
	clone := New[V]()
	for n := l.head; n != nil; n = n.next {
		clone.PushBack(n.value)
		if clone.size-1 == l.cursorIndex { // Just appended the node mirroring our cursor.
			clone.cursor, clone.cursorIndex = clone.tail, clone.size-1
		}
	}
	clone.verify("clone")
	return clone
}

// Len returns the number of elements in the list.
func (l *CursorList[V]) Len() int {
	return l.size
}

// checkIndex makes sure `index` addresses an existing element.
func (l *CursorList[V]) checkIndex(index int) error {
	if index < 0 || index >= l.size {
		return fmt.Errorf("%w: index %d is not within a list of size %d", ErrOutOfRange, index, l.size)
	}
	return nil
}

// touch moves the cursor to `n` at `index`, unless `index` is the first or last one.
func (l *CursorList[V]) touch(n *node[V], index int) {
	if index == 0 || index == l.size-1 {
		return // First and last elements are O(1) already.
	}
	l.cursor, l.cursorIndex = n, index
}

// RefMove returns a pointer to the value at `index`, optionally moving the cursor there.
// The pointer stays valid only until that element is removed from the list.
func (l *CursorList[V]) RefMove(index int, moveCursor bool) (*V, error) {
	if err := l.checkIndex(index); err != nil {
		return nil, err
	}
	n, err := l.locate(index)
	if err != nil {
		return nil, err
	}
	if moveCursor {
		l.touch(n, index)
	}
	return &n.value, nil
}

// Ref returns a pointer to the value at `index` and moves the cursor there.
func (l *CursorList[V]) Ref(index int) (*V, error) {
	return l.RefMove(index, true /*moveCursor*/)
}

// GetMove returns the value at `index`, optionally moving the cursor there.
func (l *CursorList[V]) GetMove(index int, moveCursor bool) (V, error) {
	ref, err := l.RefMove(index, moveCursor)
	if err != nil {
		var zero V
		return zero, err
	}
	return *ref, nil
}

// Get returns the value at `index` and moves the cursor there.
func (l *CursorList[V]) Get(index int) (V, error) {
	return l.GetMove(index, true /*moveCursor*/)
}

// Peek returns the value at `index` without moving the cursor.
func (l *CursorList[V]) Peek(index int) (V, error) {
	return l.GetMove(index, false /*moveCursor*/)
}

// SetMove overwrites the value at `index`, optionally moving the cursor there.
func (l *CursorList[V]) SetMove(index int, value V, moveCursor bool) error {
	ref, err := l.RefMove(index, moveCursor)
	if err != nil {
		return err
	}
	*ref = value
	return nil
}

// Set overwrites the value at `index` and moves the cursor there.
func (l *CursorList[V]) Set(index int, value V) error {
	return l.SetMove(index, value, true /*moveCursor*/)
}

// CursorIndex returns the index of the cursor.
func (l *CursorList[V]) CursorIndex() (int, error) {
	if l.size == 0 {
		return 0, fmt.Errorf("%w: an empty list has no cursor", ErrOutOfRange)
	}
	return l.cursorIndex, nil
}

// CursorRef returns a pointer to the value under the cursor.
func (l *CursorList[V]) CursorRef() (*V, error) {
	if l.size == 0 {
		return nil, fmt.Errorf("%w: an empty list has no cursor", ErrOutOfRange)
	}
	return &l.cursor.value, nil
}

// CursorValue returns the value under the cursor.
func (l *CursorList[V]) CursorValue() (V, error) {
	ref, err := l.CursorRef()
	if err != nil {
		var zero V
		return zero, err
	}
	return *ref, nil
}

// PushFront adds `value` to the front of the list. The cursor keeps its node, so its index grows by one.
func (l *CursorList[V]) PushFront(value V) {
	n := &node[V]{value: value, next: l.head}
	if l.head != nil {
		l.head.prev = n
		l.cursorIndex++
	} else { // List was empty.
		l.tail = n
		l.cursor, l.cursorIndex = n, 0
	}
	l.head = n
	l.size++
	l.verify("push_front")
}

// PushBack adds `value` to the back of the list.
func (l *CursorList[V]) PushBack(value V) {
	n := &node[V]{value: value, prev: l.tail}
	if l.tail != nil {
		l.tail.next = n
	} else { // List was empty.
		l.head = n
		l.cursor, l.cursorIndex = n, 0
	}
	l.tail = n
	l.size++
	l.verify("push_back")
}

// PushAtCursor inserts `value` right before the cursor node and moves the cursor onto it.
// When the cursor is on the last element the value is appended after it instead and becomes the new tail.
func (l *CursorList[V]) PushAtCursor(value V) error {
	if l.size == 0 {
		return fmt.Errorf("%w: cannot push at the cursor of an empty list", ErrOutOfRange)
	}
	n := &node[V]{value: value}
	switch {
	case l.cursorIndex == 0: // Becomes the new head; the cursor index stays 0.
		n.next = l.head
		l.head.prev = n
		l.head = n
	case l.cursorIndex == l.size-1: // Becomes the new tail.
		n.prev = l.tail
		l.tail.next = n
		l.tail = n
		l.cursorIndex = l.size
	default:
		n.prev, n.next = l.cursor.prev, l.cursor
		l.cursor.prev.next = n
		l.cursor.prev = n
	}
	l.cursor = n
	l.size++
	l.verify("push_at_cursor")
	return nil
}

// unlinkHead detaches the head node. The list must not be empty; the cursor is left for the caller to fix.
func (l *CursorList[V]) unlinkHead() *node[V] {
	removed := l.head
	l.head = removed.next
	if l.head != nil {
		l.head.prev = nil
	} else { // Removed the only node.
		l.tail = nil
	}
	removed.next = nil
	l.size--
	return removed
}

// unlinkTail detaches the tail node. The list must not be empty; the cursor is left for the caller to fix.
func (l *CursorList[V]) unlinkTail() *node[V] {
	removed := l.tail
	l.tail = removed.prev
	if l.tail != nil {
		l.tail.next = nil
	} else { // Removed the only node.
		l.head = nil
	}
	removed.prev = nil
	l.size--
	return removed
}

// resetCursor puts the cursor in its empty-list state.
func (l *CursorList[V]) resetCursor() {
	l.cursor, l.cursorIndex = nil, 0
}

// PopFront removes and returns the first element.
func (l *CursorList[V]) PopFront() (V, error) {
	if l.size == 0 {
		var zero V
		return zero, fmt.Errorf("%w: cannot pop the front of an empty list", ErrOutOfRange)
	}
	removed := l.unlinkHead()
	switch {
	case l.size == 0:
		l.resetCursor()
	case l.cursorIndex > 0:
		l.cursorIndex--
	default: // The cursor was on the removed head.
		l.cursor = l.head
	}
	l.verify("pop_front")
	return removed.value, nil
}

// PopBack removes and returns the last element.
func (l *CursorList[V]) PopBack() (V, error) {
	if l.size == 0 {
		var zero V
		return zero, fmt.Errorf("%w: cannot pop the back of an empty list", ErrOutOfRange)
	}
	removed := l.unlinkTail()
	if l.size == 0 {
		l.resetCursor()
	} else if l.cursorIndex >= l.size { // The cursor was on the removed tail.
		l.cursor, l.cursorIndex = l.tail, l.size-1
	}
	l.verify("pop_back")
	return removed.value, nil
}

// PopAtCursor removes and returns the element under the cursor. The cursor moves to the removed node's successor,
// which takes over its index, or to the new tail when the last element was removed.
func (l *CursorList[V]) PopAtCursor() (V, error) {
	if l.size == 0 {
		var zero V
		return zero, fmt.Errorf("%w: cannot pop the cursor of an empty list", ErrOutOfRange)
	}
	switch l.cursorIndex {
	case 0:
		return l.PopFront()
	case l.size - 1:
		return l.PopBack()
	}
	removed := l.cursor
	removed.prev.next = removed.next
	removed.next.prev = removed.prev
	l.cursor = removed.next
	removed.next, removed.prev = nil, nil
	l.size--
	l.verify("pop_at_cursor")
	return removed.value, nil
}

// Equal reports whether both lists hold equal values in the same order. Cursors are not compared.
func (l *CursorList[V]) Equal(other *CursorList[V]) bool {
	if l == other {
		return true
	}
	if l.size != other.size {
		return false
	}
	for n, o := l.head, other.head; n != nil && o != nil; n, o = n.next, o.next {
		if n.value != o.value {
			return false
		}
	}
	return true
}

// Assign makes the list a copy of `src`, cursor position included. Existing nodes are overwritten in place;
// the list grows with PushBack or shrinks with PopBack only by the difference in length.
func (l *CursorList[V]) Assign(src *CursorList[V]) {
	if l == src {
		return
	}
	index := 0
	current, other := l.head, src.head
	for ; current != nil && other != nil; current, other, index = current.next, other.next, index+1 {
		current.value = other.value
		if index == src.cursorIndex {
			l.cursor, l.cursorIndex = current, index
		}
	}
	for ; other != nil; other, index = other.next, index+1 { // Source is longer.
		l.PushBack(other.value)
		if index == src.cursorIndex {
			l.cursor, l.cursorIndex = l.tail, index
		}
	}
	for l.size > src.size { // Destination is longer.
		l.unlinkTail()
	}
	if l.size == 0 {
		l.resetCursor()
	}
	l.verify("assign")
}

// All yields index-value pairs from head to tail. The cursor is not moved.
func (l *CursorList[V]) All() iter.Seq2[int, V] {
	return func(yield func(int, V) bool) {
		index := 0
		for n := l.head; n != nil; n = n.next {
			if !yield(index, n.value) {
				return
			}
			index++
		}
	}
}

// Backward yields index-value pairs from tail to head. The cursor is not moved.
func (l *CursorList[V]) Backward() iter.Seq2[int, V] {
	return func(yield func(int, V) bool) {
		index := l.size - 1
		for n := l.tail; n != nil; n = n.prev {
			if !yield(index, n.value) {
				return
			}
			index--
		}
	}
}

// Slice returns a copy of the values in [start, end) without moving the cursor.
func (l *CursorList[V]) Slice(start, end int) ([]V, error) {
	if start < 0 || end > l.size || start > end {
		return nil, fmt.Errorf("%w: range [%d, %d) is not within a list of size %d", ErrOutOfRange, start, end, l.size)
	}
	values := make([]V, 0, end-start)
	if start == end {
		return values, nil
	}
	n, err := l.locate(start)
	if err != nil {
		return nil, err
	}
	for ; n != nil && len(values) < end-start; n = n.next {
		values = append(values, n.value)
	}
	return values, nil
}

// String renders the list as "{a, b, c}", or "{}" when empty.
func (l *CursorList[V]) String() string {
	var builder strings.Builder
	builder.WriteByte('{')
	for n := l.head; n != nil; n = n.next {
		if n != l.head {
			builder.WriteString(", ")
		}
		_, _ = fmt.Fprint(&builder, n.value)
	}
	builder.WriteByte('}')
	return builder.String()
}
