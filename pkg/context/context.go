// Package context implements the keyword-proximity scanner: a small
// Aho-Corasick automaton over a fixed set of secret-adjacent keywords,
// used by the entropy engine to boost confidence near words like "token"
// or "secret".
package context

import "strings"

// Keywords is the fixed set of case-insensitive keywords that raise
// confidence when found immediately before a candidate high-entropy span.
var Keywords = []string{
	"key", "api", "token", "secret", "password", "passwd", "pwd",
	"auth", "bearer", "access", "id", "credential", "private",
	"client", "aws", "gcp", "azure", "stripe", "ghp",
}

type trieNode struct {
	children map[byte]*trieNode
	fail     *trieNode
	depth    int   // length of the path from root to this node
	matches  []int // lengths of keywords ending at this node (via fail chain)
}

// Scanner is a compiled Aho-Corasick automaton over Keywords.
type Scanner struct {
	root *trieNode
}

// New builds an Aho-Corasick automaton over the given keyword set
// (case-folded to lowercase at build time).
func New(keywords []string) *Scanner {
	root := &trieNode{children: make(map[byte]*trieNode)}

	for _, kw := range keywords {
		node := root
		lower := strings.ToLower(kw)
		for i := 0; i < len(lower); i++ {
			c := lower[i]
			next, ok := node.children[c]
			if !ok {
				next = &trieNode{children: make(map[byte]*trieNode), depth: node.depth + 1}
				node.children[c] = next
			}
			node = next
		}
		node.matches = append(node.matches, len(lower))
	}

	queue := make([]*trieNode, 0, len(root.children))
	for _, child := range root.children {
		child.fail = root
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for c, child := range cur.children {
			queue = append(queue, child)

			f := cur.fail
			for f != nil {
				if next, ok := f.children[c]; ok {
					child.fail = next
					break
				}
				f = f.fail
			}
			if child.fail == nil {
				child.fail = root
			}
			child.matches = append(child.matches, child.fail.matches...)
		}
	}

	return &Scanner{root: root}
}

// DefaultScanner is the automaton over the fixed Keywords set.
var DefaultScanner = New(Keywords)

func isWordByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}

func toLowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// ScanPrecedingContext reports whether a keyword occurs in
// text[max(0,tokenStart-window):tokenStart], bounded on both sides by a
// non-alphanumeric character (so "monkey" does not match on "key").
func (s *Scanner) ScanPrecedingContext(text []byte, tokenStart, window int) bool {
	if tokenStart < 0 || tokenStart > len(text) {
		return false
	}
	lo := tokenStart - window
	if lo < 0 {
		lo = 0
	}
	region := text[lo:tokenStart]
	if len(region) == 0 {
		return false
	}

	node := s.root
	for i := 0; i < len(region); i++ {
		c := toLowerByte(region[i])

		for node != s.root {
			if _, ok := node.children[c]; ok {
				break
			}
			node = node.fail
		}
		if next, ok := node.children[c]; ok {
			node = next
		} else {
			node = s.root
		}

		for _, l := range node.matches {
			end := i + 1 // exclusive, relative to region
			start := end - l
			if start < 0 {
				continue
			}
			absStart := lo + start
			absEnd := lo + end

			leftOK := absStart == 0 || !isWordByte(text[absStart-1])
			rightOK := absEnd >= len(text) || !isWordByte(text[absEnd])

			if leftOK && rightOK {
				return true
			}
		}
	}
	return false
}
