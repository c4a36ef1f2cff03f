package main

import "finops-console/internal/cli"

func main() {
	cli.Execute()
}
