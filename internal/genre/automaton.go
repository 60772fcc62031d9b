// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

package genre

import "unicode/utf8"

// automaton is an Aho-Corasick matcher over normalized synonym terms. One
// pass over the text finds every genre whose terms occur in it, instead of
// one substring scan per synonym.
//
// Built once in NewMatcher and read-only afterwards.
type automaton struct {
	root *acNode
}

type acNode struct {
	children map[rune]*acNode
	failure  *acNode
	output   []acOutput // terms ending here
}

type acOutput struct {
	entry int
	size  int // term length in bytes
}

// span is one term occurrence in the scanned text, as byte offsets.
type span struct {
	entry      int
	start, end int
}

func newACNode() *acNode {
	return &acNode{children: make(map[rune]*acNode)}
}

// newAutomaton indexes the terms of every entry under its position.
func newAutomaton(entries []entry) *automaton {
	a := &automaton{root: newACNode()}
	for i, e := range entries {
		for _, term := range e.terms {
			a.insert(term, i)
		}
	}
	a.buildFailureLinks()
	return a
}

func (a *automaton) insert(term string, entry int) {
	node := a.root
	for _, ch := range term {
		next := node.children[ch]
		if next == nil {
			next = newACNode()
			node.children[ch] = next
		}
		node = next
	}
	for _, existing := range node.output {
		if existing.entry == entry {
			return
		}
	}
	node.output = append(node.output, acOutput{entry: entry, size: len(term)})
}

// buildFailureLinks walks the trie breadth first so every node's failure
// target is finished before its children need it.
func (a *automaton) buildFailureLinks() {
	queue := make([]*acNode, 0, len(a.root.children))
	for _, child := range a.root.children {
		child.failure = a.root
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ch, child := range current.children {
			queue = append(queue, child)

			fail := current.failure
			for fail != nil && fail.children[ch] == nil {
				fail = fail.failure
			}
			if fail == nil {
				child.failure = a.root
				continue
			}
			child.failure = fail.children[ch]
			child.output = append(child.output, child.failure.output...)
		}
	}
}

// scan returns every term occurrence in text.
func (a *automaton) scan(text string) []span {
	var spans []span
	node := a.root
	for i, ch := range text {
		for node != a.root && node.children[ch] == nil {
			node = node.failure
		}
		if next := node.children[ch]; next != nil {
			node = next
		}
		end := i + utf8.RuneLen(ch)
		for _, out := range node.output {
			spans = append(spans, span{entry: out.entry, start: end - out.size, end: end})
		}
	}
	return spans
}

// find returns the entries matched in text. An occurrence lying inside a
// longer occurrence of another entry does not count, so "中華そば" is
// ramen and neither 中華 nor そば.
func (a *automaton) find(text string) map[int]bool {
	spans := a.scan(text)
	found := make(map[int]bool, len(spans))
	for _, s := range spans {
		if !shadowed(s, spans) {
			found[s.entry] = true
		}
	}
	return found
}

func shadowed(s span, spans []span) bool {
	for _, o := range spans {
		if o.entry != s.entry && o.start <= s.start && s.end <= o.end && o.end-o.start > s.end-s.start {
			return true
		}
	}
	return false
}
