// Package main is the entry point of the memplace command.
package main

import "github.com/sarchlab/memplace/memplace/cmd"

func main() {
	cmd.Execute()
}
