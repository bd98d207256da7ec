package main

import "github.com/elcaja5/nvim-strudel-sub002/cmd"

func main() {
	cmd.Execute()
}
