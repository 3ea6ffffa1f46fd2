package list

import (
	"fmt"

	"github.com/nobletooth/fll/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Anchors a positional walk can start from.
const (
	anchorHead   = "head"
	anchorCursor = "cursor"
	anchorTail   = "tail"
)

var (
	locateMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "list_locate_total",
		Help: "The total number of positional lookups, by the anchor the walk started from",
	}, []string{"anchor"})
	locateStepsMetric = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "list_locate_steps",
		Help:    "The number of links walked per positional lookup",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
)

// distance returns |a - b|.
func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// locate returns the node at `index`, walking from the closest of head, cursor and tail.
// Ties go to head / tail. The caller validates `index` against the list size beforehand.
func (l *CursorList[V]) locate(index int) (*node[V], error) {
	current, currentIndex := l.head, 0
	forward, anchor := true, anchorHead
	if index > l.cursorIndex { // Between the cursor and the tail.
		if distance(index, l.cursorIndex) < distance(index, l.size-1) {
			current, currentIndex, anchor = l.cursor, l.cursorIndex, anchorCursor
		} else {
			current, currentIndex, forward, anchor = l.tail, l.size-1, false, anchorTail
		}
	} else if distance(index, l.cursorIndex) < distance(index, 0) { // Between the head and the cursor.
		current, currentIndex, forward, anchor = l.cursor, l.cursorIndex, false, anchorCursor
	}

	steps := 0
	for current != nil {
		if currentIndex == index {
			locateMetric.WithLabelValues(anchor).Inc()
			locateStepsMetric.Observe(float64(steps))
			return current, nil
		}
		if forward {
			current = current.next
			currentIndex++
		} else {
			current = current.prev
			currentIndex--
		}
		steps++
	}

	// Ran off the list before reaching `index`; the size or the cursor is lying about the links.
	walkError := "overrun"
	if !forward {
		walkError = "underrun"
	}
	utils.RaiseInvariant("list", "locate_"+walkError, "Positional walk ran off the list.",
		"index", index, "size", l.size, "cursorIndex", l.cursorIndex, "anchor", anchor)
	return nil, fmt.Errorf("%w: walk %s while locating index %d from %s", ErrBrokenInvariant, walkError, index, anchor)
}
