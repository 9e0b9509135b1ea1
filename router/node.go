// Copyright 2025 The Nestgo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

// node is a single radix-tree node, scoped to one HTTP method's tree.
//
// literal holds the byte run this node owns; childrenByFirstByte indexes
// literal children by their first byte so descent never scans a list. A
// node may additionally own one paramEdge (reached after consuming a
// ":name" segment) and one wildcardEdge (reached after consuming a
// trailing "*", which always terminates the path).
//
// store is non-nil only on a terminal node, the node a registered route
// actually resolves to. paramNames records, in the order they were
// captured walking root-to-terminal, the declared name for every param
// segment on this route; it has no meaning on non-terminal nodes.
type node struct {
	literal             string
	childrenByFirstByte map[byte]*node
	paramEdge           *node
	wildcardEdge        *node

	store      any
	paramNames []string
}

// insertLiteral walks (and splits, if necessary) n's literal children to
// make room for lit, returning the node that now owns exactly that byte
// run. Splitting preserves every route already anchored below the split
// point when the literal diverges mid-part.
func insertLiteral(n *node, lit string) *node {
	if lit == "" {
		return n
	}
	if n.childrenByFirstByte == nil {
		n.childrenByFirstByte = make(map[byte]*node, 4)
	}

	child, ok := n.childrenByFirstByte[lit[0]]
	if !ok {
		leaf := &node{literal: lit}
		n.childrenByFirstByte[lit[0]] = leaf
		return leaf
	}

	cp := commonPrefixLen(lit, child.literal)
	switch {
	case cp == len(child.literal) && cp == len(lit):
		// lit exactly matches an existing literal run.
		return child

	case cp == len(child.literal):
		// child's whole literal is a prefix of lit; keep descending with
		// the remainder.
		return insertLiteral(child, lit[cp:])

	default:
		// The literal runs diverge at byte cp (or lit is a strict prefix
		// of child.literal): split child into a shared prefix node and a
		// suffix node carrying everything child used to own.
		split := &node{literal: child.literal[:cp]}
		child.literal = child.literal[cp:]
		split.childrenByFirstByte = map[byte]*node{child.literal[0]: child}
		n.childrenByFirstByte[lit[0]] = split

		if cp == len(lit) {
			return split
		}
		remainder := &node{literal: lit[cp:]}
		split.childrenByFirstByte[remainder.literal[0]] = remainder
		return remainder
	}
}

// commonPrefixLen returns the length of the longest common byte prefix of
// a and b.
func commonPrefixLen(a, b string) int {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	i := 0
	for i < max && a[i] == b[i] {
		i++
	}
	return i
}

// matchLiteralChild returns the literal child of n whose run is a prefix
// of window, and the number of bytes consumed, or (nil, 0) if none
// matches. Short runs are compared byte-by-byte; the substring compare is
// used for longer ones.
func matchLiteralChild(n *node, window string) (*node, int) {
	if len(window) == 0 || n.childrenByFirstByte == nil {
		return nil, 0
	}
	child, ok := n.childrenByFirstByte[window[0]]
	if !ok {
		return nil, 0
	}
	if len(child.literal) > len(window) {
		return nil, 0
	}
	if len(child.literal) <= 8 {
		for i := 0; i < len(child.literal); i++ {
			if child.literal[i] != window[i] {
				return nil, 0
			}
		}
	} else if window[:len(child.literal)] != child.literal {
		return nil, 0
	}
	return child, len(child.literal)
}
