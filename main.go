package main

import "geneflow_go/cli"

func main() {
	cli.Execute()
}
