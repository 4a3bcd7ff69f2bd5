package main

import "github.com/LiBuchauer/spatial-MP-discordances/cmd"

func main() {
	cmd.Execute()
}
