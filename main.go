package main

import "github.com/dotcommander/skillpack/cmd"

func main() {
	cmd.Execute()
}
