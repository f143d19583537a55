package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"cosmosdeploy/internal/config"
)

func main() {
	stateDir := flag.String("state", config.Default().StateDir, "deployment state directory")
	addr := flag.String("addr", "", "listen address (defaults to :PORT or :8080)")
	flag.Parse()

	if *addr == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		*addr = ":" + port
	}

	s := newServer(*stateDir)
	fmt.Printf("cosmosdeploy status server on %s (state: %s)\n", *addr, *stateDir)
	if err := http.ListenAndServe(*addr, s.router()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
