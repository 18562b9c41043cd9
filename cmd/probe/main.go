// Command probe talks to a synthesis engine directly, without the panel: it can send
// a single control message or dump the engine's current patch.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
