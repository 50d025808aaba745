package main

import "github.com/borsalabs/borsafeed/cmd"

func main() {
	cmd.Execute()
}
