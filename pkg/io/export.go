package io

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/matzehuels/parallax/pkg/bfs"
	"github.com/matzehuels/parallax/pkg/errors"
	"github.com/matzehuels/parallax/pkg/graph"
	"github.com/matzehuels/parallax/pkg/pagerank"
)

// Format selects the output encoding of results.
type Format string

const (
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
)

// ParseFormat parses "tsv" or "json". The empty string means TSV.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatTSV:
		return FormatTSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidArgument, "unknown format %q (want tsv or json)", s)
}

// WriteEdgeList writes el as edge list text with a header comment that
// records the vertex count. The output can be read back with
// [ReadEdgeList].
func WriteEdgeList(w io.Writer, el *graph.EdgeList, vertices int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# vertices: %d edges: %d\n", vertices, el.Len())
	weights, weighted := el.Weights.Get()
	buf := make([]byte, 0, 64)
	for i := range el.Src {
		buf = strconv.AppendInt(buf[:0], int64(el.Src[i]), 10)
		buf = append(buf, '\t')
		buf = strconv.AppendInt(buf, int64(el.Dst[i]), 10)
		if weighted {
			buf = append(buf, '\t')
			buf = strconv.AppendFloat(buf, weights[i], 'g', -1, 64)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ExportEdgeList writes el to a file at path.
func ExportEdgeList(path string, el *graph.EdgeList, vertices int) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := WriteEdgeList(f, el, vertices); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteRanks writes PageRank output. TSV prints "vertex<TAB>rank" for the
// given ranking; JSON encodes the whole result plus the ranking.
func WriteRanks(w io.Writer, res *pagerank.Result, top []pagerank.Ranked, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, struct {
			Iterations int               `json:"iterations"`
			Residual   float64           `json:"residual"`
			Status     pagerank.Status   `json:"status"`
			Top        []pagerank.Ranked `json:"top"`
		}{res.Iterations, res.Residual, res.Status, top})
	default:
		bw := bufio.NewWriter(w)
		for _, r := range top {
			fmt.Fprintf(bw, "%d\t%.10g\n", r.Vertex, r.Rank)
		}
		return bw.Flush()
	}
}

// WriteBFS writes search output. TSV prints "vertex<TAB>distance<TAB>
// predecessor" for every reached vertex; JSON encodes the result.
func WriteBFS(w io.Writer, res *bfs.Result, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, res)
	default:
		bw := bufio.NewWriter(w)
		for v, d := range res.Distances {
			if d == bfs.Infinity {
				continue
			}
			fmt.Fprintf(bw, "%d\t%d\t%d\n", v, d, res.Predecessors[v])
		}
		return bw.Flush()
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
