package main

import (
	"github.com/gamevault/gamevault/cmd/gamevault/commands"
)

func main() {
	commands.Execute()
}
