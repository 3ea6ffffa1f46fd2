package list

import (
	"errors"
	"flag"
	"fmt"

	"github.com/nobletooth/fll/pkg/utils"
)

var checkInvariants = flag.Bool("list_check_invariants", false,
	"Walks every list after each mutation to verify its links. Slow; meant for debugging.")

// verify checks the list structure after the `op` mutation when invariant checks are enabled.
func (l *CursorList[V]) verify(op string) {
	if !*checkInvariants && !utils.IsTestMode {
		return
	}
	if err := l.checkStructure(); err != nil {
		utils.RaiseInvariant("list", "broken_structure", "List structure is inconsistent after a mutation.",
			"op", op, "error", err)
	}
}

// checkStructure walks the list both ways and makes sure anchors, links, size, and cursor agree.
func (l *CursorList[V]) checkStructure() error {
	if l.size < 0 {
		return fmt.Errorf("negative size %d", l.size)
	}
	if l.size == 0 {
		if l.head != nil || l.tail != nil || l.cursor != nil {
			return errors.New("empty list has non-nil anchors")
		}
		return nil
	}
	if l.head == nil || l.tail == nil || l.cursor == nil {
		return fmt.Errorf("list of size %d has a nil anchor", l.size)
	}
	if l.cursorIndex < 0 || l.cursorIndex >= l.size {
		return fmt.Errorf("cursor index %d is not within a list of size %d", l.cursorIndex, l.size)
	}
	if l.head.prev != nil || l.tail.next != nil {
		return errors.New("head or tail is linked past the list ends")
	}

	forward, last := 0, (*node[V])(nil)
	for n := l.head; n != nil && forward <= l.size; n = n.next {
		if n.prev != last {
			return fmt.Errorf("node %d has a stale back link", forward)
		}
		if forward == l.cursorIndex && n != l.cursor {
			return fmt.Errorf("cursor node is not at cursor index %d", l.cursorIndex)
		}
		last = n
		forward++
	}
	if forward != l.size || last != l.tail {
		return fmt.Errorf("walked %d nodes from head, expected %d ending at tail", forward, l.size)
	}

	backward, first := 0, (*node[V])(nil)
	for n := l.tail; n != nil && backward <= l.size; n = n.prev {
		first = n
		backward++
	}
	if backward != l.size || first != l.head {
		return fmt.Errorf("walked %d nodes from tail, expected %d ending at head", backward, l.size)
	}
	return nil
}
