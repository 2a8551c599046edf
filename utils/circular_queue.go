package utils

import "iter"

// CircularQueue is a fixed-capacity ring buffer. Appending past capacity
// evicts the oldest element.
type CircularQueue[T any] struct {
	items []T
	head  int
	count int
}

// NewCircularQueue ...
func NewCircularQueue[T any](capacity int) *CircularQueue[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &CircularQueue[T]{items: make([]T, capacity)}
}

// Append appends an item, evicting the oldest one if the queue is full.
func (q *CircularQueue[T]) Append(item T) {
	tail := (q.head + q.count) % len(q.items)
	q.items[tail] = item
	if q.count == len(q.items) {
		q.head = (q.head + 1) % len(q.items)
	} else {
		q.count++
	}
}

// At returns the element at logical position index (0 = oldest). ok is false
// if the index is out of range.
func (q *CircularQueue[T]) At(index int) (item T, ok bool) {
	if index < 0 || index >= q.count {
		return item, false
	}
	return q.items[(q.head+index)%len(q.items)], true
}

// Latest returns the most recently appended element.
func (q *CircularQueue[T]) Latest() (item T, ok bool) {
	return q.At(q.count - 1)
}

// Len returns the number of items currently held.
func (q *CircularQueue[T]) Len() int {
	return q.count
}

// Cap returns the maximum number of items the queue can hold.
func (q *CircularQueue[T]) Cap() int {
	return len(q.items)
}

// Iter iterates from oldest to newest.
func (q *CircularQueue[T]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < q.count; i++ {
			if !yield(q.items[(q.head+i)%len(q.items)]) {
				return
			}
		}
	}
}
