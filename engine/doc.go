// Package engine provides reference implementations of the gridkit engine
// interfaces: volume of interest extraction, separable Gaussian smoothing and
// Bowyer-Watson Delaunay triangulation on the best fitting plane.
package engine
