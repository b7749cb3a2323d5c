package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/astro-datalab/dlfelis/cmd"
	"github.com/astro-datalab/dlfelis/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		var serr *errors.Error
		if stderrors.As(err, &serr) {
			for _, suggestion := range serr.Suggestions {
				fmt.Fprintf(os.Stderr, "  hint: %s\n", suggestion)
			}
		}

		os.Exit(1)
	}
}
