package main

import "github.com/justicz/packstream/cmd/packstream/cmd"

func main() {
	cmd.Execute()
}
