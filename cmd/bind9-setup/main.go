package main

import (
	"os"

	"github.com/indracloudin/setup-bind9-centos/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
