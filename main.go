package main

import "github.com/tpodg/wakenrun/internal/cli"

func main() {
	cli.Execute()
}
