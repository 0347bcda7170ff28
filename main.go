package main

import "github.com/Sigmmma/Halomaps/cmd"

func main() {
	cmd.Execute()
}
