package main

import "pnr-tracker/cmd/pnrctl/commands"

func main() {
	commands.Execute()
}
