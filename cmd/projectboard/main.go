package main

import "github.com/monocle-dev/projectboard/internal/cli"

func main() {
	cli.Execute()
}
