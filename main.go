package main

import "github.com/winny-/beep/cmd"

func main() {
	cmd.Execute()
}
