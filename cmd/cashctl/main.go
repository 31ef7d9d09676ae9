// Command cashctl is the back-office companion of the cash API: change
// quotes, denomination checks, end-of-day reports and cashier tokens.
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
