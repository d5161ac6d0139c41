package main

import "alchemy/cmd/alchemy/cmd"

func main() {
	cmd.Execute()
}
