// ====================================
// File: cmd/marketplace/main.go
// ====================================
package main

import (
	"os"

	"github.com/rovshanmuradov/nft-marketplace/cmd/marketplace/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
