package main

import (
	"github.com/fvclaus/winmon/cmd/winmon/commands"
)

func main() {
	commands.Execute()
}
