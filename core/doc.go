/*
Package gridkit holds the data model of structured, uniform and triangulated
datasets together with the filters operating on them.

The only algorithm implemented natively is the concatenation of structured
grids. Subset extraction, Gaussian smoothing and Delaunay triangulation are
delegated to engines injected through the Filters type, so a native toolkit
binding can replace the reference engines of the engine package.

Lattices are stored column-major: for dimensions (nx, ny, nz) the node
(i, j, k) lives at i + nx*(j + ny*k). Dims carries the stride arithmetic.

Split a grid in two and join the halves back:

	lower, _ := filters.ExtractSubset(ctx, grid, gridkit.SubsetParams{VOI: gridkit.VOI{0, 80, 0, 40, 0, 0}, Boundary: true})
	upper, _ := filters.ExtractSubset(ctx, grid, gridkit.SubsetParams{VOI: gridkit.VOI{0, 80, 40, 80, 0, 0}, Boundary: true})
	joined, err := gridkit.Concatenate(lower, upper, 1, 0)
*/
package gridkit
