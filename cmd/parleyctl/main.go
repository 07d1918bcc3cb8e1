package main

import (
	"os"

	"github.com/okian/parley/internal/ctl"
)

func main() {
	if err := ctl.NewApp().Run(os.Args); err != nil {
		os.Stderr.WriteString("parleyctl: " + err.Error() + "\n")
		os.Exit(1)
	}
}
