package codedom

import "iter"

type findOptions struct {
	maxDepth int // 0 means unbounded
}

// FindOption configures FindChild and FindChildren.
type FindOption func(*findOptions)

// Direct limits a lookup to the direct children of the scope.
func Direct() FindOption { return MaxDepth(1) }

// MaxDepth limits a lookup to n levels below the scope. n <= 0 means
// unbounded, which is also the default.
func MaxDepth(n int) FindOption {
	return func(o *findOptions) {
		if n < 0 {
			n = 0
		}
		o.maxDepth = n
	}
}

// kindOf returns the element kind a type parameter selects. Interface type
// parameters select every kind.
func kindOf[T Element]() Kind {
	var zero T
	if any(zero) == nil {
		return KindAny
	}
	return zero.ElementKind()
}

// FindChild returns the descendant of scope of type T named name. The
// search is breadth-first so nearer elements win. Name uniqueness among
// same-kind siblings is maintained by Tree.Add and not re-checked here.
func FindChild[T Element](t *Tree, scope ID, name string, opts ...FindOption) (T, bool) {
	for el := range FindChildren[T](t, scope, name, opts...) {
		return el, true
	}
	var zero T
	return zero, false
}

// FindChildren yields every descendant of scope of type T named name, in
// breadth-first order. The sequence can be iterated more than once.
func FindChildren[T Element](t *Tree, scope ID, name string, opts ...FindOption) iter.Seq[T] {
	var o findOptions
	for _, opt := range opts {
		opt(&o)
	}
	kind := kindOf[T]()
	return func(yield func(T) bool) {
		if t.Element(scope) == nil {
			return
		}
		level := []ID{scope}
		for depth := 1; len(level) > 0 && (o.maxDepth == 0 || depth <= o.maxDepth); depth++ {
			var next []ID
			for _, id := range level {
				b := t.nodes[id].base()
				if kind != KindAny {
					if c, ok := b.byName[childKey{kind, name}]; ok {
						if typed, ok := t.nodes[c].(T); ok && !yield(typed) {
							return
						}
					}
				} else {
					for _, c := range b.children {
						if t.nodes[c].Name() != name {
							continue
						}
						if typed, ok := t.nodes[c].(T); ok && !yield(typed) {
							return
						}
					}
				}
				next = append(next, b.children...)
			}
			level = next
		}
	}
}
