package packet

// Fold visits p depth-first in pre-order, operators before their children,
// threading the accumulator through fn.
func Fold[T any](p Packet, init T, fn func(T, Packet) T) T {
	switch n := p.(type) {
	case *Literal:
		return fn(init, n)
	case *Operator:
		acc := fn(init, n)
		for _, child := range n.Children {
			acc = Fold(child, acc, fn)
		}
		return acc
	default:
		return init
	}
}

// Walk visits p in the same order as Fold. The root is at depth 0.
func Walk(p Packet, visit func(p Packet, depth int)) {
	walk(p, 0, visit)
}

func walk(p Packet, depth int, visit func(Packet, int)) {
	switch n := p.(type) {
	case *Literal:
		visit(n, depth)
	case *Operator:
		visit(n, depth)
		for _, child := range n.Children {
			walk(child, depth+1, visit)
		}
	}
}

// VersionSum adds up the version field of every packet in the tree.
func VersionSum(p Packet) int {
	return Fold(p, 0, func(sum int, p Packet) int {
		return sum + int(p.Header().Version)
	})
}

// Count returns the number of packets in the tree.
func Count(p Packet) int {
	return Fold(p, 0, func(n int, _ Packet) int { return n + 1 })
}

// Depth returns the deepest nesting level in the tree; a lone root is 0.
func Depth(p Packet) int {
	deepest := 0
	Walk(p, func(_ Packet, depth int) {
		if depth > deepest {
			deepest = depth
		}
	})
	return deepest
}
