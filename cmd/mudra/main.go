// Command mudra serves and runs the Bharatanatyam hand-mudra classifier.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
