package main

import (
	"os"

	"github.com/echomap/echomap/souvenirservice"
)

func main() {
	if err := souvenirservice.Run(); err != nil {
		os.Exit(1)
	}
}
