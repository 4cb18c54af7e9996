package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/s52/pkg/s52"
)

func main() {
	// Create a software renderer (no GPU needed)
	r, err := s52.NewRenderer(s52.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	// Add a depth area and a coastline
	depare := r.AddArea([][]float64{{
		-70.80, 41.40, 0,
		-70.60, 41.40, 0,
		-70.60, 41.60, 0,
		-70.80, 41.60, 0,
	}})
	depare.SetName("DEPARE")

	coast := r.AddLine([]float64{
		-70.80, 41.60, 0,
		-70.70, 41.62, 0,
		-70.60, 41.60, 0,
	})
	coast.SetName("COALNE")

	// Route symbology: fill depth areas, stroke coastlines
	r.SetPortrayal(func(o *s52.Object) []s52.Instruction {
		switch o.Name() {
		case "DEPARE":
			return []s52.Instruction{{Kind: s52.AreaFill, Color: "DEPVS"}}
		case "COALNE":
			return []s52.Instruction{{Kind: s52.LineStyle, Color: "CSTLN", Width: 2}}
		}
		return nil
	})

	// Position the view and draw
	if err := r.SetView(41.5, -70.7, 0.25, 0); err != nil {
		log.Fatal(err)
	}
	if err := r.Draw(); err != nil {
		log.Fatal(err)
	}

	st := r.Stats()
	fmt.Printf("Scale: 1:%.0f\n", r.ScaleDenominator())
	fmt.Printf("Drew %d features with %d draw calls\n", st.Objects, st.DrawCalls)
}
