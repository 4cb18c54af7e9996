package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/s52/pkg/s52"
)

// Two adjacent depth areas share a boundary in the chart's chain-node
// topology. Marking the shared edge keeps it from being stroked twice
// (once per area), which matters for dashed safety-contour styles.
func main() {
	r, err := s52.NewRenderer(s52.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	shallow := r.AddArea([][]float64{{
		-70.80, 41.40, 0,
		-70.70, 41.40, 0,
		-70.70, 41.60, 0,
		-70.80, 41.60, 0,
	}})
	shallow.SetName("DEPARE")
	shallow.SetAttribute("DRVAL1", "0")
	shallow.SetAttribute("DRVAL2", "5")
	shallow.SetScamin(180000) // drop out beyond 1:180000

	deep := r.AddArea([][]float64{{
		-70.70, 41.40, 0,
		-70.60, 41.40, 0,
		-70.60, 41.60, 0,
		-70.70, 41.60, 0,
	}})
	deep.SetName("DEPARE")
	deep.SetAttribute("DRVAL1", "5")
	deep.SetAttribute("DRVAL2", "20")

	marked := r.MarkSharedEdges(shallow, deep)
	fmt.Printf("marked %d shared boundary coordinates\n", marked)

	r.SetPortrayal(func(o *s52.Object) []s52.Instruction {
		color := "DEPDW"
		if v, ok := o.Attribute("DRVAL2"); ok && v == "5" {
			color = "DEPVS"
		}
		return []s52.Instruction{
			{Kind: s52.AreaFill, Color: color},
			{Kind: s52.LineStyle, Color: "DEPCN", Width: 1},
		}
	})

	if err := r.SetView(41.5, -70.7, 0.15, 0); err != nil {
		log.Fatal(err)
	}
	if err := r.Draw(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("drew %d features\n", r.Stats().Objects)
}
