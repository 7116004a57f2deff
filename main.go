package main

import "github.com/xvierd/forest-cli/cmd"

func main() {
	cmd.Execute()
}
