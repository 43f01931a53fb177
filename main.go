package main

import (
	"os"

	"github.com/kebairia/mongosnap/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
