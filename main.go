package main

import "vidpace-sender/cli"

func main() {
	cli.Execute()
}
