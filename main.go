package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jetsetilly/sci0play/player"
	"golang.org/x/term"
)

func main() {
	err := player.Launch(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Println(player.Diagnostic(err, term.IsTerminal(int(os.Stdout.Fd()))))
		os.Exit(player.Outcome(err))
	}
}
