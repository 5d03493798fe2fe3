package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

func main() {
	root := &cobra.Command{
		Use:     "captcha",
		Short:   "OCR-backed captcha challenge code recognition",
		Version: version,
	}

	root.AddCommand(
		newRecognizeCmd(),
		newTypesCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
