package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"hrdesk/internal/hrctlcli"
)

func main() {
	if err := hrctlcli.Execute(os.Args[1:]); err != nil {
		if errors.Is(err, hrctlcli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr)
			hrctlcli.PrintUsage(os.Stderr)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}
