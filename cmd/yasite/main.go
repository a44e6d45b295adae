package main

import "github.com/yasite/internal/cli"

func main() {
	cli.Execute()
}
