package services

type subscription[T any] struct {
	id int
	fn func(T)
}

// notifier delivers values to subscribers in subscription order.
type notifier[T any] struct {
	subs []subscription[T]
	next int
}

// subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (n *notifier[T]) subscribe(fn func(T)) func() {
	id := n.next
	n.next++
	n.subs = append(n.subs, subscription[T]{id: id, fn: fn})

	return func() {
		for i, s := range n.subs {
			if s.id == id {
				n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

func (n *notifier[T]) emit(v T) {
	// subscribers may unsubscribe while being notified
	subs := append([]subscription[T](nil), n.subs...)
	for _, s := range subs {
		s.fn(v)
	}
}
