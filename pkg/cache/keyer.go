package cache

// Keyer builds cache keys.
type Keyer interface {
	// GraphKey identifies a loaded graph by the hash of its source.
	GraphKey(sourceHash string, opts GraphKeyOpts) string

	// PageRankKey identifies a PageRank result on a graph.
	PageRankKey(graphHash string, opts PageRankKeyOpts) string

	// BFSKey identifies a BFS result on a graph.
	BFSKey(graphHash string, opts BFSKeyOpts) string
}

// GraphKeyOpts holds the load options that change the resulting graph.
type GraphKeyOpts struct {
	Vertices int  `json:"vertices,omitempty"`
	Weighted bool `json:"weighted,omitempty"`
	OneBased bool `json:"one_based,omitempty"`
}

// PageRankKeyOpts holds the solver options that change the ranks.
type PageRankKeyOpts struct {
	Alpha     float64 `json:"alpha"`
	Tolerance float64 `json:"tolerance"`
	MaxIter   int     `json:"max_iter"`
	GuessHash string  `json:"guess_hash,omitempty"`
}

// BFSKeyOpts holds the search options that change the result.
type BFSKeyOpts struct {
	Start     int32  `json:"start"`
	Direction string `json:"direction"`
	MaxDepth  int    `json:"max_depth,omitempty"`
}

// DefaultKeyer hashes its inputs under fixed prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey returns "graph:<hash>".
func (k *DefaultKeyer) GraphKey(sourceHash string, opts GraphKeyOpts) string {
	return hashKey(KeyTypeGraph, sourceHash, opts)
}

// PageRankKey returns "pagerank:<hash>".
func (k *DefaultKeyer) PageRankKey(graphHash string, opts PageRankKeyOpts) string {
	return hashKey(KeyTypePageRank, graphHash, opts)
}

// BFSKey returns "bfs:<hash>".
func (k *DefaultKeyer) BFSKey(graphHash string, opts BFSKeyOpts) string {
	return hashKey(KeyTypeBFS, graphHash, opts)
}

var _ Keyer = (*DefaultKeyer)(nil)
