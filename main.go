// The main package for the repec-harvester executable.
package main

import (
	"github.com/economistry/repec-harvester/cmd"
)

func main() {
	cmd.Execute()
}
