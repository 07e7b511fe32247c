package main

import (
	_ "github.com/joho/godotenv/autoload"
)

// Version is injected at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	Execute()
}
