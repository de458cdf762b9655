package io

import (
	"bufio"
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/parallax/pkg/errors"
	"github.com/matzehuels/parallax/pkg/graph"
)

// maxLine bounds a single input line.
const maxLine = 1 << 20

// ReadOptions controls edge list parsing.
type ReadOptions struct {
	// Vertices fixes the vertex count. Zero infers max id + 1.
	Vertices int

	// OneBased subtracts one from every id.
	OneBased bool

	// Unweighted ignores a third column if present.
	Unweighted bool
}

// Parsed is an edge list read from text along with its vertex count.
type Parsed struct {
	Edges    *graph.EdgeList
	Vertices int
}

// ReadEdgeList parses edge list text from r.
//
// It fails with ErrCodeInvalidFormat on a malformed line, naming the line
// number, and with ErrCodeInvalidArgument when an id does not fit the
// vertex count. ReadEdgeList does not close r.
func ReadEdgeList(r io.Reader, opts ReadOptions) (*Parsed, error) {
	var (
		src, dst []int32
		weights  []float64
		weighted = -1 // unknown until the first edge
		lineNo   int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == '%' {
			continue
		}
		fields := splitFields(line)
		if len(fields) < 2 || len(fields) > 3 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: want 2 or 3 fields, got %d", lineNo, len(fields))
		}

		s, err := parseID(fields[0], opts.OneBased)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d: source", lineNo)
		}
		d, err := parseID(fields[1], opts.OneBased)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d: destination", lineNo)
		}

		has := len(fields) == 3 && !opts.Unweighted
		if weighted < 0 {
			weighted = boolInt(has)
		} else if boolInt(has) != weighted {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: mixed weighted and unweighted edges", lineNo)
		}
		if has {
			w, err := strconv.ParseFloat(fields[2], 64)
			if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: bad weight %q", lineNo, fields[2])
			}
			weights = append(weights, w)
		}
		src = append(src, s)
		dst = append(dst, d)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read edge list")
	}

	el := &graph.EdgeList{Src: src, Dst: dst}
	if weighted == 1 {
		el.Weights = graph.SomeWeights(weights)
	}
	return finish(el, opts.Vertices)
}

// finish resolves the vertex count and validates ids against it.
func finish(el *graph.EdgeList, vertices int) (*Parsed, error) {
	if vertices == 0 {
		vertices = int(el.MaxVertex()) + 1
	}
	if err := el.Validate(vertices); err != nil {
		return nil, err
	}
	return &Parsed{Edges: el, Vertices: vertices}, nil
}

// ImportEdgeList reads the edge list file at path.
func ImportEdgeList(path string, opts ReadOptions) (*Parsed, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadEdgeList(f, opts)
}

// Document is the JSON form of an edge list.
type Document struct {
	Vertices int       `json:"vertices,omitempty"`
	Src      []int32   `json:"src"`
	Dst      []int32   `json:"dst"`
	Weights  []float64 `json:"weights,omitempty"`
}

// EdgeList validates the document and returns it as an edge list.
func (d *Document) EdgeList() (*Parsed, error) {
	if err := errors.ValidateLength("dst", len(d.Dst), len(d.Src)); err != nil {
		return nil, err
	}
	el := &graph.EdgeList{Src: d.Src, Dst: d.Dst}
	if d.Weights != nil {
		el.Weights = graph.SomeWeights(d.Weights)
	}
	if d.Vertices < 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "vertices must be >= 0, got %d", d.Vertices)
	}
	return finish(el, d.Vertices)
}

// ReadJSON decodes a [Document] from r.
func ReadJSON(r io.Reader) (*Parsed, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode edge list")
	}
	return doc.EdgeList()
}

func splitFields(line string) []string {
	if strings.ContainsRune(line, ',') {
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return strings.Fields(line)
}

func parseID(s string, oneBased bool) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if oneBased {
		v--
	}
	if v < 0 || v >= graph.MaxVertices {
		return 0, errors.New(errors.ErrCodeInvalidArgument, "id %s out of range", s)
	}
	return int32(v), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
