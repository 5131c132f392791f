package main

import (
	"bytes"
	"fmt"
	"log"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/voxkit/levelset"
	"github.com/voxkit/levelset/band"
	"github.com/voxkit/levelset/mesh"
	"github.com/voxkit/levelset/surface"
)

func main() {
	logger := levelset.NewTextLogger(slog.LevelDebug)

	fmt.Println("--- Cartesian ---")

	grid, err := mesh.NewGrid(3, r3.Vec{}, r3.Vec{X: 10, Y: 10, Z: 10}, [3]int{100, 100, 100})
	if err != nil {
		log.Fatal(err)
	}

	cart := levelset.NewCartesian(grid, levelset.WithLogger(logger))
	sphere := surface.NewSphere(r3.Vec{X: 5, Y: 5, Z: 5}, 2)

	start := time.Now()
	if err := cart.Compute(sphere); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Seconds: %.4f\n", time.Since(start).Seconds())
	printBand(cart)

	fmt.Println("\n--- Octree ---")

	tree, err := mesh.NewTree(3, r3.Vec{}, 10, 4)
	if err != nil {
		log.Fatal(err)
	}

	oct := levelset.NewOctree(tree, levelset.WithLogger(logger))

	start = time.Now()
	if err := oct.Compute(sphere.Clone()); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Seconds: %.4f\n", time.Since(start).Seconds())
	printBand(oct)

	fmt.Println("\n--- Refine band cells ---")

	var split []mesh.AdaptionInfo
	for id := range tree.CellIDs() {
		if !oct.IsInNarrowBand(id) {
			continue
		}
		info, err := tree.RefineCell(id)
		if err != nil {
			log.Fatal(err)
		}
		split = append(split, info)
	}

	start = time.Now()
	if err := oct.Update(sphere.Clone(), split); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Records: %d\n", len(split))
	fmt.Printf("Seconds: %.4f\n", time.Since(start).Seconds())
	printBand(oct)

	fmt.Println("\n--- Snapshot ---")

	var buf bytes.Buffer
	if err := oct.Band().Save(&buf, band.CompressionZSTD); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Bytes: %d\n", buf.Len())

	restored := band.New()
	if err := restored.Load(&buf); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Restored cells: %d\n", restored.Len())
}

func printBand(ls levelset.LevelSet) {
	rSearch, ok := ls.RSearch()
	if !ok {
		fmt.Println("Band: empty")
		return
	}
	fmt.Printf("RSearch: %.4f\n", rSearch)
	fmt.Printf("Band cells: %d\n", ls.Band().Len())
}
