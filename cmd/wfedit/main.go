// Command wfedit edits event workflows from the terminal.
//
// Usage:
//
//	wfedit check nightly.json
//	wfedit arrange nightly.yaml -o arranged.yaml
//	wfedit convert nightly.json nightly.json.sz
//	wfedit edit nightly.json --metrics-addr :9090
//	wfedit tui nightly.json
//
// The record format is chosen from the file extension: .json, .yaml/.yml or
// .json.sz (snappy-compressed JSON).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
