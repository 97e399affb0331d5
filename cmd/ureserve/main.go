package main

import (
	"github.com/joho/godotenv"

	"ureserve/cmd"
)

func main() {
	// Optional .env for local development; a missing file is fine.
	_ = godotenv.Load()

	cmd.Execute()
}
