package main

import "github.com/partyup/partyup/internal/cli"

func main() {
	cli.Execute()
}
