package main

import "github.com/emiliopalmerini/camlog/internal/cli"

func main() {
	cli.Execute()
}
