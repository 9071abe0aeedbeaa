package kdknn_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hupe1980/kdknn"
	"github.com/hupe1980/kdknn/report"
)

// ExampleRun demonstrates an exact sweep over two in-process workers.
func ExampleRun() {
	cfg := kdknn.Config{Points: 10, KMin: 3, KMax: 3, KStep: 1, Seed: 7, Variant: kdknn.Replicate}

	var results report.Collector
	if _, err := kdknn.Run(context.Background(), cfg,
		kdknn.WithWorkers(2),
		kdknn.WithSink(&results),
	); err != nil {
		log.Fatal(err)
	}

	selfFirst := true
	for _, r := range results.ByK(3) {
		selfFirst = selfFirst && r.Neighbors[0].ID == r.Query.ID
	}

	fmt.Println("results:", len(results.ByK(3)))
	fmt.Println("each point is its own nearest neighbor:", selfFirst)
	// Output:
	// results: 10
	// each point is its own nearest neighbor: true
}

// Example_scalingTable demonstrates the speedup table printed by -scaling.
func Example_scalingTable() {
	rows := report.Scaling([]report.Measurement{
		{Workers: 1, Elapsed: 2 * time.Second},
		{Workers: 2, Elapsed: time.Second},
	})
	if err := report.WriteScaling(os.Stdout, rows); err != nil {
		log.Fatal(err)
	}
	// Output:
	// Processors  Time  Stddev  Speedup  Efficiency  Peak RSS
	// 1           2.00  -       1.00     1.00        -
	// 2           1.00  -       2.00     1.00        -
}
