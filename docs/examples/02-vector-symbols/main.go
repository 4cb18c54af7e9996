package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/s52/pkg/s52"
)

func main() {
	opts := s52.DefaultOptions()
	opts.DotPitchMM = 0.26 // match your display for true physical sizing
	r, err := s52.NewRenderer(opts)
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	// Symbols are authored in PresLib vector language on a 0.01 mm
	// grid. This one is a simplified special-purpose buoy: a conical
	// outline with a topmark dot.
	err = r.LoadSymbol("BOYSPP11", []s52.SymbolLayer{
		{Color: "CHBLK", Definition: "SW1;PU-150,-200;PD0,200,150,-200;PD-150,-200"},
		{Color: "CHYLW", Definition: "PU0,300;PM0;CI60;PM2"},
	})
	if err != nil {
		log.Fatal(err)
	}

	// Drop a few buoys along a channel
	positions := [][2]float64{
		{-70.74, 41.47}, {-70.71, 41.50}, {-70.68, 41.53},
	}
	for i, p := range positions {
		buoy := r.AddPoint(p[0], p[1], 0)
		buoy.SetName("BOYSPP")
		buoy.SetAttribute("OBJNAM", fmt.Sprintf("No %d", i*2+2))
	}

	r.SetPortrayal(func(o *s52.Object) []s52.Instruction {
		name, _ := o.Attribute("OBJNAM")
		return []s52.Instruction{
			{Kind: s52.PointSymbol, Symbol: "BOYSPP11"},
			{Kind: s52.Text, Color: "CHBLK", Text: name, OffsetX: 12, OffsetY: -12},
		}
	})

	if err := r.SetView(41.5, -70.71, 0.1, 0); err != nil {
		log.Fatal(err)
	}

	// The symbols render at the same physical size at any zoom:
	// compiled once, re-issued per frame.
	for _, rangeDeg := range []float64{0.1, 0.02} {
		if err := r.SetView(41.5, -70.71, rangeDeg, 0); err != nil {
			log.Fatal(err)
		}
		if err := r.Draw(); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("1:%.0f  %d draw calls, %d fresh triangles\n",
			r.ScaleDenominator(), r.Stats().DrawCalls, r.Stats().TessTriangles)
	}
}
