// Package pagerank computes PageRank by power iteration over the transpose
// view of a graph handle.
//
// Every iteration is a synchronous Jacobi update: the new rank vector is
// computed entirely from the previous one before the buffers are swapped,
// so results do not depend on goroutine scheduling. The rank held by
// vertices without out-edges (dangling mass) is redistributed uniformly,
// which keeps the ranks summing to one:
//
//	r'[v] = alpha * sum(r[u] / outdeg(u) for u -> v)
//	      + alpha * dangling / V
//	      + (1 - alpha) / V
//
// Iteration stops when the L1 distance between consecutive vectors drops
// below Tolerance * V, or after MaxIter iterations. Hitting the iteration
// cap is not an error: the last estimate is returned with status
// [MaxIterationsExceeded].
//
// # Usage
//
//	res, err := pagerank.Run(ctx, h, pagerank.Options{Alpha: 0.85})
//	if err != nil {
//	    return err
//	}
//	if res.Status == pagerank.MaxIterationsExceeded {
//	    log.Warn("pagerank did not converge", "residual", res.Residual)
//	}
//	for _, r := range pagerank.TopK(res.Ranks, 10) {
//	    fmt.Println(r.Vertex, r.Rank)
//	}
package pagerank
