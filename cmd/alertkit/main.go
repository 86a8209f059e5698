package main

import "github.com/ivlev/alertkit/internal/cli"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.Execute(version)
}
