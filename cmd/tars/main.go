package main

import "github.com/tars-dev/tars/internal/cli"

func main() {
	cli.Execute()
}
