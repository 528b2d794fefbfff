package main

import "github.com/tidydir/tidydir/cmd/tidydir/commands"

func main() {
	commands.Execute()
}
