package main

import (
	"os"

	"github.com/astro-web3/recipebox/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
