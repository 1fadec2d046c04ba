package main

import "lspinstall/internal/cli"

func main() {
	cli.Execute()
}
