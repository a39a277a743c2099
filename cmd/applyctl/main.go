// Command applyctl fills out and submits insurance applications against a
// running application-service from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/poofware/application-service/internal/utils"
)

func main() {
	utils.InitLogger("applyctl")

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
