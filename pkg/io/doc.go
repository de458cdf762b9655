// Package io reads and writes edge lists and analysis results as text.
//
// # Edge list text
//
// The text format is the one SNAP and most graph repositories publish:
// one edge per line, source and destination id separated by whitespace or
// a comma, with an optional third column holding the weight.
//
//	# FromNodeId	ToNodeId
//	0	1
//	0	2	0.5
//	% matrix-market style comments are skipped too
//
// Lines starting with '#' or '%' and blank lines are ignored. Either every
// edge carries a weight or none does. Ids are zero-based unless
// [ReadOptions.OneBased] is set.
//
// Use [ReadEdgeList] for any io.Reader or [ImportEdgeList] for a path. The
// vertex count of the result is the largest id plus one unless
// [ReadOptions.Vertices] says otherwise.
//
// # JSON
//
// [Document] is the JSON form of an edge list, shared with the HTTP API:
//
//	{"vertices": 3, "src": [0, 0], "dst": [1, 2], "weights": [1, 0.5]}
//
// # Results
//
// [WriteRanks] and [WriteBFS] print solver output as tab-separated text
// or JSON, selected by [Format].
//
// This package is an interchange adapter. It does not define a persistence
// format for graph handles.
package io
