package main

import "github.com/ammcore/ammd/internal/cli"

func main() {
	cli.Execute()
}
