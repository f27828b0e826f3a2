// The main package for the casesearch executable.
package main

import (
	"github.com/jagriti-dev/casesearch/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
