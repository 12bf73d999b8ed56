package main

import "github.com/agentic-research/tabdex/cmd"

func main() {
	cmd.Execute()
}
