// Package topology provides the immutable directed graph the verification
// engine runs over.
//
// A topology maps every node to the list of its predecessors: the nodes
// whose transferred routes it merges during an update round. Directed edges
// are the derived (predecessor, node) pairs.
//
// Topologies are frozen at construction. Construction validates that every
// referenced predecessor is a declared node and fails fast otherwise; after
// New returns, the structure is safe for unsynchronized concurrent reads.
package topology
