package main

import (
	"fmt"
	"os"

	tool "github.com/sandeepkv93/invotrac/internal/tools/invotrac"
)

func main() {
	if err := tool.NewRootCommand().Execute(); err != nil {
		if !tool.Reported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(tool.ExitCode(err))
	}
}
