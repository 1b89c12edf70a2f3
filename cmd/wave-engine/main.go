package main

import "github.com/stevelan1995/wave-engine/pkg/cli/cmd"

func main() {
	cmd.Execute()
}
