package main

import "github.com/portal-acara/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
