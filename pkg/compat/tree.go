/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: tree.go
Description: Curated compatibility tree. A file is parsed into nested nodes keyed by
feature name; every node may carry a __compat record whose support object maps browser
IDs to entries. Only entries written through Support.Set are re-encoded, everything else
is emitted from its original bytes so unmodified files round-trip unchanged.
*/

package compat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	keyCompat  = "__compat"
	keySupport = "support"
)

// Tree is one parsed curated file
type Tree struct {
	root *Node
}

// Node is one object level of the tree
type Node struct {
	members  []member
	children map[string]*Node
	compat   *Compat
}

// Compat is the __compat record of a feature
type Compat struct {
	members    []member
	hasSupport bool
	support    *Support
}

// Support is the browser → entry map of a Compat record, in file order
type Support struct {
	order   []string
	raw     map[string]json.RawMessage
	entries map[string]Entry
	dirty   map[string]bool
}

// ParseTree decodes a curated file
func ParseTree(data []byte) (*Tree, error) {
	root, err := parseNode(data, "")
	if err != nil {
		return nil, err
	}
	return &Tree{root: root}, nil
}

func parseNode(data []byte, path string) (*Node, error) {
	members, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", displayPath(path), err)
	}

	node := &Node{members: members, children: make(map[string]*Node)}
	for _, m := range members {
		if !isObject(m.value) {
			continue
		}
		if m.key == keyCompat {
			c, err := parseCompat(m.value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", displayPath(path), err)
			}
			node.compat = c
			continue
		}
		child, err := parseNode(m.value, joinPath(path, m.key))
		if err != nil {
			return nil, err
		}
		node.children[m.key] = child
	}
	return node, nil
}

func parseCompat(data []byte) (*Compat, error) {
	members, err := decodeObject(data)
	if err != nil {
		return nil, err
	}

	c := &Compat{members: members, support: newSupport()}
	for _, m := range members {
		if m.key != keySupport {
			continue
		}
		support, err := parseSupport(m.value)
		if err != nil {
			return nil, err
		}
		c.support = support
		c.hasSupport = true
	}
	return c, nil
}

func newSupport() *Support {
	return &Support{
		raw:     make(map[string]json.RawMessage),
		entries: make(map[string]Entry),
		dirty:   make(map[string]bool),
	}
}

func parseSupport(data []byte) (*Support, error) {
	members, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("invalid support object: %w", err)
	}

	s := newSupport()
	for _, m := range members {
		var entry Entry
		if err := json.Unmarshal(m.value, &entry); err != nil {
			return nil, fmt.Errorf("support for %s: %w", m.key, err)
		}
		s.order = append(s.order, m.key)
		s.raw[m.key] = m.value
		s.entries[m.key] = entry
	}
	return s, nil
}

// Find returns the compat record at a dotted feature path, or nil
func (t *Tree) Find(path string) *Compat {
	node := t.root
	for _, part := range strings.Split(path, ".") {
		node = node.children[part]
		if node == nil {
			return nil
		}
	}
	return node.compat
}

// Paths lists every feature path that has a compat record, in document order
func (t *Tree) Paths() []string {
	var paths []string
	var walk func(n *Node, path string)
	walk = func(n *Node, path string) {
		if n.compat != nil && path != "" {
			paths = append(paths, path)
		}
		for _, m := range n.members {
			if child, ok := n.children[m.key]; ok {
				walk(child, joinPath(path, m.key))
			}
		}
	}
	walk(t.root, "")
	return paths
}

// Encode writes the tree as two-space indented JSON with a trailing newline
func (t *Tree) Encode() ([]byte, error) {
	compact, err := t.root.encode()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (n *Node) encode() ([]byte, error) {
	out := make([]member, 0, len(n.members))
	for _, m := range n.members {
		value := m.value
		switch {
		case m.key == keyCompat && n.compat != nil:
			encoded, err := n.compat.encode()
			if err != nil {
				return nil, err
			}
			value = encoded
		case n.children[m.key] != nil:
			encoded, err := n.children[m.key].encode()
			if err != nil {
				return nil, err
			}
			value = encoded
		}
		out = append(out, member{key: m.key, value: value})
	}
	return encodeObject(out)
}

// Support returns the record's support map
func (c *Compat) Support() *Support {
	return c.support
}

func (c *Compat) encode() ([]byte, error) {
	out := make([]member, 0, len(c.members)+1)
	for _, m := range c.members {
		if m.key != keySupport {
			out = append(out, m)
			continue
		}
		encoded, err := c.support.encode()
		if err != nil {
			return nil, err
		}
		out = append(out, member{key: m.key, value: encoded})
	}
	if !c.hasSupport && len(c.support.order) > 0 {
		encoded, err := c.support.encode()
		if err != nil {
			return nil, err
		}
		out = append(out, member{key: keySupport, value: encoded})
	}
	return encodeObject(out)
}

// Get returns the browser's entry, Absent when the browser is not listed
func (s *Support) Get(browser string) Entry {
	entry, ok := s.entries[browser]
	if !ok {
		return Absent()
	}
	return entry.Clone()
}

// Browsers lists browser IDs in file order
func (s *Support) Browsers() []string {
	return append([]string(nil), s.order...)
}

// Set replaces the browser's entry. A new browser is inserted before the
// first listed browser that sorts after it.
func (s *Support) Set(browser string, entry Entry) {
	if _, ok := s.entries[browser]; !ok {
		i := sort.Search(len(s.order), func(i int) bool { return s.order[i] > browser })
		s.order = append(s.order, "")
		copy(s.order[i+1:], s.order[i:])
		s.order[i] = browser
	}
	s.entries[browser] = entry.Clone()
	s.dirty[browser] = true
}

// Snapshot returns an independent copy of every entry
func (s *Support) Snapshot() map[string]Entry {
	out := make(map[string]Entry, len(s.entries))
	for browser, entry := range s.entries {
		out[browser] = entry.Clone()
	}
	return out
}

func (s *Support) encode() ([]byte, error) {
	out := make([]member, 0, len(s.order))
	for _, browser := range s.order {
		value, ok := s.raw[browser]
		if !ok || s.dirty[browser] {
			encoded, err := s.entries[browser].MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("support for %s: %w", browser, err)
			}
			value = encoded
		}
		out = append(out, member{key: browser, value: value})
	}
	return encodeObject(out)
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func displayPath(path string) string {
	if path == "" {
		return "root"
	}
	return path
}
