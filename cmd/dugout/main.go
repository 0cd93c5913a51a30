package main

import "dugout-backend/cmd/dugout/cmd"

func main() {
	cmd.Execute()
}
