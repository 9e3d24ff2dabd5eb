package main

import (
	"github.com/oshokin/thermo-verify/cmd/thermo-verify/cmd"
)

func main() {
	cmd.Execute()
}
