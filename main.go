package main

import "github.com/Anmepod44/website/cmd"

func main() {
	cmd.Init()
}
