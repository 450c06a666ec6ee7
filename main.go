package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/gaurav-prasanna/reportpipe/cmd"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; the process environment still applies without it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, ".env file not loaded: %v\n", err)
	}

	cmd.Execute()
}
