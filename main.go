// main.go
package main

import (
	"github.com/xkilldash9x/tabwarden/cmd"
)

func main() {
	cmd.Execute()
}
