package main

import (
	"log"

	"olympuspro/services/bondd"
)

func main() {
	if err := bondd.Main(); err != nil {
		log.Fatalf("bondd: %v", err)
	}
}
