package main

import "github.com/v0gen/v0gen/cmd"

func main() {
	cmd.Execute()
}
