package main

import (
	"github.com/greenplate/ordering/cmd"
)

func main() {
	cmd.Start()
}
