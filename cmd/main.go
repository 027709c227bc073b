package main

import (
	"github.com/datalog-lang/go-datalog/pkg/cmd"
)

func main() {
	cmd.Execute()
}
