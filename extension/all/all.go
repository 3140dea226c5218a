// Package all imports all core mdkb extensions.
// Import this package to register all built-in commands.
package all

import (
	// Core extension - registers itself via init()
	_ "github.com/mtreilly/mdkb/extension/core"
)
