package main

import "il-insurance-compute/internal/cli"

func main() {
	cli.Execute()
}
