package main

import (
	"log"
	_ "time/tzdata"

	"content-router/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
