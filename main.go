package main

import "github.com/mouse-blink/py3ify/cmd"

func main() {
	cmd.Execute()
}
