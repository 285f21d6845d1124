package main

import "github.com/urocare/clinic/cmd"

func main() {
	cmd.Execute()
}
