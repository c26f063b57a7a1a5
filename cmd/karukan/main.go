// Command karukan is a debug CLI that drives the conversion engine
// directly over stdin/stdout, for manual testing without a host
// integration. It is not the production entry point for any platform
// addon.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
