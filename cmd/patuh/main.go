package main

import "github.com/patuh/patuh/internal/cli"

func main() {
	cli.Execute()
}
