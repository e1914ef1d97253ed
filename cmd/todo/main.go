// Package main is the entry point for the todo CLI.
package main

import "github.com/basecamp/todo-cli/internal/cli"

func main() {
	cli.Execute()
}
