package main

import "github.com/panyam/queuelab/cmd/queuelab/commands"

func main() {
	commands.Execute()
}
