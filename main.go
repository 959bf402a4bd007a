package main

import "github.com/runZeroInc/sshsigcheck/cmd"

func main() {
	cmd.Execute()
}
