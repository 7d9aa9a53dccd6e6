// Command schoolwork is a terminal study assistant backed by a cloud or
// local AI provider.
package main

import "github.com/marcus/schoolwork/cmd/schoolwork/commands"

func main() {
	commands.Execute()
}
