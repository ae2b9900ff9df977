// Package nodes defines the permission node grammar shared by groups and
// user grants. A raw node string is parsed once, at write time, into a Node
// so the resolution hot path never re-inspects strings.
//
// Grammar: an optional leading '-' (negation) followed by a dot-segmented
// identifier, optionally ending in '*' (wildcard). A bare "*" grants
// everything; "-*" revokes everything a bare "*" would grant.
package nodes

import (
	"errors"
	"strings"
)

type Kind uint8

const (
	Exact Kind = iota
	Wildcard
)

var (
	ErrEmptyNode   = errors.New("permission node is empty")
	ErrBadWildcard = errors.New("'*' is only allowed as the final character")
	ErrBadChar     = errors.New("permission node contains an invalid character")
)

// Node is a parsed permission entry: {Exact(node) | Wildcard(prefix)},
// optionally negated.
type Node struct {
	raw     string
	prefix  string
	kind    Kind
	negated bool
}

// Parse validates raw and returns its parsed form.
func Parse(raw string) (Node, error) {
	body := raw
	negated := false
	if strings.HasPrefix(body, "-") {
		negated = true
		body = body[1:]
	}
	if body == "" {
		return Node{}, ErrEmptyNode
	}

	kind := Exact
	prefix := body
	if strings.HasSuffix(body, "*") {
		kind = Wildcard
		prefix = body[:len(body)-1]
	}

	for _, c := range prefix {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.', c == '_', c == '-':
		case c == '*':
			return Node{}, ErrBadWildcard
		default:
			return Node{}, ErrBadChar
		}
	}

	return Node{raw: raw, prefix: prefix, kind: kind, negated: negated}, nil
}

// Valid reports whether raw parses as a permission node.
func Valid(raw string) bool {
	_, err := Parse(raw)
	return err == nil
}

func (n Node) Raw() string   { return n.raw }
func (n Node) Kind() Kind    { return n.kind }
func (n Node) Negated() bool { return n.negated }

// Prefix is the full node for Exact entries and the text before the '*'
// for Wildcard entries.
func (n Node) Prefix() string { return n.prefix }

// Global reports whether the node is the catch-all "*" (or "-*").
func (n Node) Global() bool { return n.kind == Wildcard && n.prefix == "" }

// Matches reports whether the node's pattern covers perm, ignoring the
// negation flag. An exact node matches only itself; a wildcard matches
// every node sharing its prefix.
func (n Node) Matches(perm string) bool {
	if n.kind == Exact {
		return n.prefix == perm
	}
	return strings.HasPrefix(perm, n.prefix)
}

// Scope is the node's specificity, used to decide whether a negation is
// narrow enough to block a wildcard grant: longer prefix = narrower scope.
func (n Node) Scope() int { return len(n.prefix) }
