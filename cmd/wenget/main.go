package main

import (
	"os"

	"github.com/wenget/wenget/cmd/wenget/cli"
)

func main() {
	os.Exit(cli.Execute())
}
