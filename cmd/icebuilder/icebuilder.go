package main

import (
	"context"
	"os"

	"github.com/poppolopoppo/icebuilder"
)

/***************************************
 * Launch Command (program entry point)
 ***************************************/

func main() {
	if err := icebuilder.LaunchCommand(context.Background(), os.Args[1:]...); err != nil {
		os.Exit(1)
	}
}
