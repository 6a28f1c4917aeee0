package main

import "exhibitrag/internal/cli"

func main() {
	cli.Execute()
}
