package main

import "github.com/fakeyudi/autosnap/cmd"

func main() {
	cmd.Execute()
}
