package main

import "github.com/ppiankov/wellwatch/internal/cli"

func main() {
	cli.Execute()
}
