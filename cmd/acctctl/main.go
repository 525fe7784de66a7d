package main

import "github.com/mcoot/gameaccounts/internal/cli"

func main() {
	cli.Execute()
}
