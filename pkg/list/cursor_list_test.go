package list

import (
	"slices"
	"testing"

	"github.com/nobletooth/fll/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertListEqualsSlice makes sure the list elements match `expected` in both directions and the links are sound.
func assertListEqualsSlice[V comparable](t *testing.T, expected []V, list *CursorList[V]) {
	t.Helper()

	require.NoError(t, list.checkStructure())
	assert.Equal(t, len(expected), list.Len(), "List length mismatch")

	forwardResult := make([]V, 0, list.Len())
	for _, value := range list.All() {
		forwardResult = append(forwardResult, value)
	}
	assert.Equal(t, expected, forwardResult, "Forward iteration mismatch")

	backwardResult := make([]V, 0, list.Len())
	for _, value := range list.Backward() {
		backwardResult = append(backwardResult, value)
	}
	slices.Reverse(backwardResult)
	assert.Equal(t, expected, backwardResult, "Backward iteration mismatch")
}

// assertCursor checks the cursor sits at `expectedIndex` holding `expectedValue`.
func assertCursor[V comparable](t *testing.T, expectedIndex int, expectedValue V, list *CursorList[V]) {
	t.Helper()
	gotIndex, err := list.CursorIndex()
	require.NoError(t, err)
	assert.Equal(t, expectedIndex, gotIndex, "Cursor index mismatch")
	gotValue, err := list.CursorValue()
	require.NoError(t, err)
	assert.Equal(t, expectedValue, gotValue, "Cursor value mismatch")
}

// tens returns {0, 10, 20, ...} with `count` elements.
func tens(count int) []int {
	values := make([]int, count)
	for i := range values {
		values[i] = i * 10
	}
	return values
}

func TestCursorList_Empty(t *testing.T) {
	utils.SetTestFlag(t, "list_check_invariants", "true")
	list := New[int]()
	assertListEqualsSlice(t, []int{}, list)
	assert.Equal(t, "{}", list.String())

	_, err := list.Get(0)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.ErrorIs(t, list.Set(0, 1), ErrOutOfRange)
	_, err = list.PopFront()
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = list.PopBack()
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = list.PopAtCursor()
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.ErrorIs(t, list.PushAtCursor(1), ErrOutOfRange)
	_, err = list.CursorIndex()
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = list.CursorValue()
	assert.ErrorIs(t, err, ErrOutOfRange)

	// Failed calls must leave the list untouched.
	assertListEqualsSlice(t, []int{}, list)
}

func TestCursorList_FromSlice(t *testing.T) {
	for _, testCase := range []struct {
		name          string
		values        []int
		expectedIndex int
	}{
		{name: "single", values: []int{7}, expectedIndex: 0},
		{name: "even", values: []int{1, 2, 3, 4}, expectedIndex: 2},
		{name: "odd", values: []int{1, 2, 3, 4, 5}, expectedIndex: 2},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			list := FromSlice(testCase.values)
			assertListEqualsSlice(t, testCase.values, list)
			assertCursor(t, testCase.expectedIndex, testCase.values[testCase.expectedIndex], list)
		})
	}

	t.Run("empty", func(t *testing.T) {
		list := FromSlice([]int{})
		assertListEqualsSlice(t, []int{}, list)
	})
}

func TestCursorList_GetAndSet(t *testing.T) {
	utils.SetTestFlag(t, "list_check_invariants", "true")

	t.Run("out of range", func(t *testing.T) {
		list := FromSlice([]int{1, 2, 3})
		for _, index := range []int{-1, 3, 100} {
			_, err := list.Get(index)
			assert.ErrorIs(t, err, ErrOutOfRange)
			assert.ErrorIs(t, list.Set(index, 0), ErrOutOfRange)
		}
		assertCursor(t, 1, 2, list)
	})

	t.Run("get moves cursor", func(t *testing.T) {
		list := FromSlice(tens(10))
		value, err := list.Get(7)
		require.NoError(t, err)
		assert.Equal(t, 70, value)
		assertCursor(t, 7, 70, list)
	})

	t.Run("peek keeps cursor", func(t *testing.T) {
		list := FromSlice(tens(10))
		value, err := list.Peek(7)
		require.NoError(t, err)
		assert.Equal(t, 70, value)
		assertCursor(t, 5, 50, list)
	})

	t.Run("first and last never move cursor", func(t *testing.T) {
		list := FromSlice(tens(10))
		for _, index := range []int{0, 9} {
			_, err := list.Get(index)
			require.NoError(t, err)
			require.NoError(t, list.Set(index, -1))
			assertCursor(t, 5, 50, list)
		}
		assertListEqualsSlice(t, []int{-1, 10, 20, 30, 40, 50, 60, 70, 80, -1}, list)
	})

	t.Run("set moves cursor", func(t *testing.T) {
		list := FromSlice(tens(10))
		require.NoError(t, list.Set(2, 222))
		assertCursor(t, 2, 222, list)
		require.NoError(t, list.SetMove(8, 888, false /*moveCursor*/))
		assertCursor(t, 2, 222, list)
		assertListEqualsSlice(t, []int{0, 10, 222, 30, 40, 50, 60, 70, 888, 90}, list)
	})

	t.Run("references write through", func(t *testing.T) {
		list := FromSlice([]int{1, 2, 3})
		ref, err := list.Ref(1)
		require.NoError(t, err)
		*ref = 20
		cursorRef, err := list.CursorRef()
		require.NoError(t, err)
		*cursorRef += 1
		assertListEqualsSlice(t, []int{1, 21, 3}, list)
	})
}

func TestCursorList_Push(t *testing.T) {
	utils.SetTestFlag(t, "list_check_invariants", "true")

	t.Run("PushBack", func(t *testing.T) {
		list := New[int]()
		list.PushBack(1)
		assertListEqualsSlice(t, []int{1}, list)
		assertCursor(t, 0, 1, list)
		list.PushBack(2)
		list.PushBack(3)
		assertListEqualsSlice(t, []int{1, 2, 3}, list)
		assertCursor(t, 0, 1, list)
	})

	t.Run("PushFront shifts cursor index", func(t *testing.T) {
		list := FromSlice([]int{10, 20, 30})
		list.PushFront(0)
		assertListEqualsSlice(t, []int{0, 10, 20, 30}, list)
		assertCursor(t, 2, 20, list)
	})

	t.Run("PushAtCursor in the middle", func(t *testing.T) {
		list := FromSlice([]int{10, 20, 30})
		require.NoError(t, list.PushAtCursor(15))
		assertListEqualsSlice(t, []int{10, 15, 20, 30}, list)
		assertCursor(t, 1, 15, list)
	})

	t.Run("PushAtCursor at head", func(t *testing.T) {
		list := FromSlice([]int{10})
		require.NoError(t, list.PushAtCursor(5))
		assertListEqualsSlice(t, []int{5, 10}, list)
		assertCursor(t, 0, 5, list)
	})

	t.Run("PushAtCursor at tail", func(t *testing.T) {
		list := FromSlice([]int{10, 20})
		assertCursor(t, 1, 20, list)
		require.NoError(t, list.PushAtCursor(30))
		assertListEqualsSlice(t, []int{10, 20, 30}, list)
		assertCursor(t, 2, 30, list)
	})
}

func TestCursorList_Pop(t *testing.T) {
	utils.SetTestFlag(t, "list_check_invariants", "true")

	t.Run("PopFront shifts cursor index", func(t *testing.T) {
		list := FromSlice([]int{10, 20, 30})
		value, err := list.PopFront()
		require.NoError(t, err)
		assert.Equal(t, 10, value)
		assertListEqualsSlice(t, []int{20, 30}, list)
		assertCursor(t, 0, 20, list)
	})

	t.Run("PopFront at cursor moves to new head", func(t *testing.T) {
		list := FromSlice([]int{10, 20, 30})
		_, err := list.PopFront()
		require.NoError(t, err)
		_, err = list.PopFront()
		require.NoError(t, err)
		assertListEqualsSlice(t, []int{30}, list)
		assertCursor(t, 0, 30, list)
	})

	t.Run("PopBack at cursor moves to new tail", func(t *testing.T) {
		list := FromSlice([]int{10, 20, 30})
		value, err := list.PopBack()
		require.NoError(t, err)
		assert.Equal(t, 30, value)
		assertCursor(t, 1, 20, list)
		_, err = list.PopBack()
		require.NoError(t, err)
		assertListEqualsSlice(t, []int{10}, list)
		assertCursor(t, 0, 10, list)
	})

	t.Run("PopAtCursor in the middle", func(t *testing.T) {
		list := FromSlice([]int{10, 20, 30})
		value, err := list.PopAtCursor()
		require.NoError(t, err)
		assert.Equal(t, 20, value)
		assertListEqualsSlice(t, []int{10, 30}, list)
		assertCursor(t, 1, 30, list)
	})

	t.Run("PopAtCursor at head and tail", func(t *testing.T) {
		list := FromSlice([]int{10, 20})
		value, err := list.PopAtCursor() // Cursor starts on the tail.
		require.NoError(t, err)
		assert.Equal(t, 20, value)
		assertListEqualsSlice(t, []int{10}, list)
		assertCursor(t, 0, 10, list)

		list.PushBack(20)
		value, err = list.PopAtCursor() // Cursor is on the head now.
		require.NoError(t, err)
		assert.Equal(t, 10, value)
		assertListEqualsSlice(t, []int{20}, list)
		assertCursor(t, 0, 20, list)
	})

	t.Run("Pop until empty", func(t *testing.T) {
		list := FromSlice(tens(6))
		for list.Len() > 0 {
			_, err := list.PopAtCursor()
			require.NoError(t, err)
			require.NoError(t, list.checkStructure())
		}
		assertListEqualsSlice(t, []int{}, list)
		list.PushFront(1)
		assertCursor(t, 0, 1, list)
	})
}

func TestCursorList_Clone(t *testing.T) {
	original := FromSlice([]int{10, 20, 30})
	clone := original.Clone()
	assertListEqualsSlice(t, []int{10, 20, 30}, clone)
	assertCursor(t, 1, 20, clone)

	require.NoError(t, clone.Set(1, 100))
	assertListEqualsSlice(t, []int{10, 20, 30}, original)
	assertListEqualsSlice(t, []int{10, 100, 30}, clone)
	assert.False(t, original.Equal(clone))

	emptyClone := New[int]().Clone()
	assertListEqualsSlice(t, []int{}, emptyClone)
}

func TestCursorList_Assign(t *testing.T) {
	utils.SetTestFlag(t, "list_check_invariants", "true")

	t.Run("self assignment", func(t *testing.T) {
		list := FromSlice(tens(10))
		_, err := list.Get(8)
		require.NoError(t, err)
		list.Assign(list)
		assertListEqualsSlice(t, tens(10), list)
		assertCursor(t, 8, 80, list)
	})

	t.Run("shorter source truncates", func(t *testing.T) {
		destination := FromSlice(tens(20))
		source := FromSlice([]int{10, 20, 30})
		destination.Assign(source)
		assertListEqualsSlice(t, []int{10, 20, 30}, destination)
		assertCursor(t, 1, 20, destination)
	})

	t.Run("shorter source with cursor on its tail", func(t *testing.T) {
		destination := FromSlice(tens(20))
		_, err := destination.Get(15)
		require.NoError(t, err)
		source := FromSlice([]int{1, 2})
		destination.Assign(source)
		assertListEqualsSlice(t, []int{1, 2}, destination)
		assertCursor(t, 1, 2, destination)
	})

	t.Run("longer source extends", func(t *testing.T) {
		source := FromSlice(tens(10))
		_, err := source.Get(7)
		require.NoError(t, err)
		destination := FromSlice([]int{67})
		destination.Assign(source)
		assertListEqualsSlice(t, tens(10), destination)
		assertCursor(t, 7, 70, destination)
	})

	t.Run("into empty", func(t *testing.T) {
		destination := New[int]()
		destination.Assign(FromSlice([]int{10, 20, 30}))
		assertListEqualsSlice(t, []int{10, 20, 30}, destination)
		assertCursor(t, 1, 20, destination)
	})

	t.Run("from empty", func(t *testing.T) {
		destination := FromSlice(tens(4))
		destination.Assign(New[int]())
		assertListEqualsSlice(t, []int{}, destination)
		_, err := destination.CursorIndex()
		assert.ErrorIs(t, err, ErrOutOfRange)
	})

	t.Run("reuses nodes", func(t *testing.T) {
		destination := FromSlice([]int{1, 2, 3})
		head := destination.head
		destination.Assign(FromSlice([]int{4, 5}))
		assert.Same(t, head, destination.head)
		assertListEqualsSlice(t, []int{4, 5}, destination)
	})
}

func TestCursorList_Equal(t *testing.T) {
	first, second := FromSlice(tens(5)), FromSlice(tens(5))
	_, err := second.Get(3)
	require.NoError(t, err)
	assert.True(t, first.Equal(second), "Cursor position must not affect equality")
	assert.True(t, first.Equal(first))
	assert.False(t, first.Equal(FromSlice(tens(4))))
	assert.False(t, first.Equal(FromSlice([]int{0, 10, 20, 30, 41})))
	assert.True(t, New[int]().Equal(New[int]()))
}

func TestCursorList_Slice(t *testing.T) {
	list := FromSlice(tens(10))
	values, err := list.Slice(3, 7)
	require.NoError(t, err)
	assert.Equal(t, []int{30, 40, 50, 60}, values)
	values, err = list.Slice(4, 4)
	require.NoError(t, err)
	assert.Empty(t, values)
	_, err = list.Slice(8, 11)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = list.Slice(5, 4)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assertCursor(t, 5, 50, list)
}

func TestCursorList_String(t *testing.T) {
	assert.Equal(t, "{}", New[string]().String())
	assert.Equal(t, "{a}", FromSlice([]string{"a"}).String())
	assert.Equal(t, "{1, 2, 3}", FromSlice([]int{1, 2, 3}).String())
}
