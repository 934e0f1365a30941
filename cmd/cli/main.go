package main

import (
	"github.com/mchmarny/schedscore/pkg/cli"
)

func main() {
	cli.Execute()
}
