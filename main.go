package main

import "github.com/jjenkins/prazos/cmd"

func main() {
	cmd.Execute()
}
