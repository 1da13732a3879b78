package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lawnchairsociety/hearthmud/internal/smoke"
)

func main() {
	serverAddr := flag.String("addr", "localhost:4000", "MUD server address")
	verbose := flag.Bool("v", false, "Verbose output - show each step of every scenario")
	flag.Parse()

	fmt.Printf("Running smoke scenarios against %s\n", *serverAddr)
	fmt.Println("Make sure the MUD server is running with data/world.yaml!")
	fmt.Println()

	if !smoke.PrintResults(smoke.RunAll(*serverAddr, smoke.Options{Verbose: *verbose})) {
		os.Exit(1)
	}
}
