// Package dtw aligns two scalar pitch sequences with Dynamic Time Warping.
//
// The aligner fills an (N+1)x(M+1) accumulated-cost table,
//
//	D[0][0] = 0
//	D[i][0] = D[0][j] = +Inf
//	D[i][j] = |a[i-1] - b[j-1]| + min(D[i-1][j-1], D[i-1][j], D[i][j-1])
//
// and backtraces from (N,M) to (0,0). When several predecessors share the
// minimum the diagonal wins, then the vertical step (advance a only), then
// the horizontal step (advance b only), so equal-cost alignments resolve
// the same way every run.
//
// Time and memory are O(N·M). An optional Sakoe-Chiba band (Options.Window)
// skips cells far from the diagonal; the band is widened to |N-M| so the end
// point is always reachable.
package dtw
