package main

import "github.com/dmitrijs2005/healthsync/internal/client/cli"

func main() {
	cli.Execute()
}
