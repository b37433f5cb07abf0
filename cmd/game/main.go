package main

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/marchfell/undercroft/internal/sim"
)

func main() {
	ebiten.SetWindowTitle("Undercroft")
	ebiten.SetWindowSize(960, 640)
	if err := ebiten.RunGame(sim.New()); err != nil {
		log.Fatal(err)
	}
}
