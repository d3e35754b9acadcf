package main

import "vault-cli/cmd"

func main() {
	cmd.Execute()
}
