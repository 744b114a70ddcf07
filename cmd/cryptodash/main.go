package main

import "crypto-dashboard/internal/cli"

func main() {
	cli.Execute()
}
