package main

import "github.com/naka-gawa/orgscout/cmd"

func main() {
	cmd.Execute()
}
