package main

import (
	"os"

	cozeproxcmder "github.com/papercomputeco/cozeprox/cmd/cozeprox"
)

func main() {
	cmd := cozeproxcmder.NewCozeproxCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
