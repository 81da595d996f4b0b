package main

import (
	"github.com/mossholt/autotab-cli/cmd"
)

func main() {
	cmd.Execute()
}
