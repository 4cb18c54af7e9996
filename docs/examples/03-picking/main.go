package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/s52/pkg/s52"
)

func main() {
	opts := s52.DefaultOptions()
	opts.Width, opts.Height = 800, 600
	r, err := s52.NewRenderer(opts)
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	anchorage := r.AddArea([][]float64{{
		-70.76, 41.46, 0,
		-70.64, 41.46, 0,
		-70.64, 41.54, 0,
		-70.76, 41.54, 0,
	}})
	anchorage.SetName("ACHARE")
	anchorage.SetAttribute("OBJNAM", "Vineyard Haven Anchorage")

	r.SetPortrayal(func(o *s52.Object) []s52.Instruction {
		return []s52.Instruction{{Kind: s52.AreaFill, Color: "DEPVS"}}
	})

	if err := r.SetView(41.5, -70.7, 0.1, 0); err != nil {
		log.Fatal(err)
	}
	if err := r.Draw(); err != nil {
		log.Fatal(err)
	}

	// Picking re-renders off screen in index colors and reads the
	// pixels under the cursor, so hits match the picture exactly.
	hits, err := r.Pick(400, 300)
	if err != nil {
		log.Fatal(err)
	}
	for _, h := range hits {
		name, _ := h.Object.Attribute("OBJNAM")
		fmt.Printf("picked %s (%s) highlighted=%v\n",
			h.Object.Name(), name, h.Highlighted)
	}

	// The visible frame is untouched: restore it from the draw
	// snapshot before painting cursor overlays.
	if err := r.RestoreOverlay(); err != nil {
		log.Fatal(err)
	}
}
