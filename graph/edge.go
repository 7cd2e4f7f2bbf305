package graph

// End is the terminal pseudo-node. A transition to End completes the run.
const End = "__end__"

// Predicate reports whether an edge may be taken for the given state.
type Predicate[S any] func(state S) bool

// Router picks the next node for the given state. It may return End.
type Router[S any] func(state S) string

// Edge is a transition between nodes. A nil Predicate always matches.
type Edge[S any] struct {
	From      string
	To        string
	Predicate Predicate[S]
}

// Always matches every state.
func Always[S any]() Predicate[S] {
	return func(S) bool { return true }
}

// Not inverts a predicate.
func Not[S any](p Predicate[S]) Predicate[S] {
	return func(state S) bool { return !p(state) }
}

// And matches when every predicate matches.
func And[S any](predicates ...Predicate[S]) Predicate[S] {
	return func(state S) bool {
		for _, p := range predicates {
			if !p(state) {
				return false
			}
		}
		return true
	}
}

// Or matches when at least one predicate matches.
func Or[S any](predicates ...Predicate[S]) Predicate[S] {
	return func(state S) bool {
		for _, p := range predicates {
			if p(state) {
				return true
			}
		}
		return false
	}
}
