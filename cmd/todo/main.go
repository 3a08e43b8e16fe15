// Command todo is a client for a remote todo list service.
package main

import "github.com/idilsaglam/todo-client/internal/cli"

func main() {
	cli.Execute()
}
