package main

import "adda/cmd/adda-cli/cmd"

func main() {
	cmd.Execute()
}
