package main

import "github.com/keyfort/keyfort/cmd"

func main() {
	cmd.Execute()
}
