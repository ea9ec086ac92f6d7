package main

import "github.com/chboard/chboard/cmd"

func main() {
	cmd.Execute()
}
