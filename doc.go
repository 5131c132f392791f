// Package levelset maintains a narrow-band signed-distance (level-set) field
// over a spatial mesh, and keeps that band consistent as the mesh adapts.
//
// Two engine variants share one contract: Cartesian for uniform grids and
// Octree for adaptive octrees. Both size the band so at least one layer of
// cells sits on each side of the embedded surface, independent of local mesh
// resolution, and both delegate the actual distance values to a Surface
// collaborator.
//
// # Quick Start
//
//	grid, _ := mesh.NewGrid(3, r3.Vec{}, r3.Vec{X: 10, Y: 10, Z: 10}, [3]int{10, 10, 10})
//	ls := levelset.NewCartesian(grid)
//
//	sphere := surface.NewSphere(r3.Vec{X: 5, Y: 5, Z: 5}, 2)
//	if err := ls.Compute(sphere); err != nil {
//		log.Fatal(err)
//	}
//
//	r, ok := ls.RSearch() // band half-width; ok is false while the band is empty
//
// # Adaptive meshes
//
// On an octree, the band is resized with a proxy-grid search on Compute and
// maintained incrementally on Update:
//
//	tree, _ := mesh.NewTree(3, r3.Vec{}, 3.2, 3)
//	ls := levelset.NewOctree(tree)
//	_ = ls.Compute(sphere)
//
//	rec, _ := tree.RefineCell(id) // adapt the mesh first
//	_ = ls.Update(sphere, []mesh.AdaptionInfo{rec})
//
// Update consumes the adaptation records of exactly one applied batch;
// concurrent batches against one engine are undefined and must be serialized
// by the caller.
//
// # Local Eikonal solves
//
// Surfaces sweeping the band in upwind order extend values one cell at a
// time through UpdateEikonal, which solves the first-order upwind
// discretization of |∇φ| = 1/g on the cell's face stencil.
//
// Engines are single-threaded and run every operation to completion; there
// is no internal locking, cancellation, or timeout.
package levelset
