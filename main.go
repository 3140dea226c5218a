/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/
package main

import (
	"github.com/mtreilly/mdkb/cmd"

	// Import extensions - each registers itself via init()
	_ "github.com/mtreilly/mdkb/extension/all"
)

func main() {
	cmd.Execute()
}
