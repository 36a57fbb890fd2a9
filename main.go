package main

import (
	"github.com/hookrelay-io/hookrelay/cmd"
)

func main() {
	cmd.Execute()
}
