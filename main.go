package main

import (
	"github.com/iburimskiy/cursor-smudge/cmd"
	"github.com/iburimskiy/cursor-smudge/internal/window"
)

func main() {
	cmd.Execute(window.Run)
}
