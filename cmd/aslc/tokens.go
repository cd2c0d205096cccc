package main

import (
	"fmt"

	"github.com/aslcompiler/aslc/compiler"
	"github.com/spf13/cobra"
)

func newTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [source_file]",
		Short: "Show the output of the lexical analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  runTokens,
	}
}

func runTokens(cmd *cobra.Command, args []string) error {
	f, err := openFile(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	toks, err := compiler.Tokenize(f)
	if err != nil {
		return err
	}
	for _, t := range toks {
		fmt.Printf("line %d: %s %q\n", t.Line, t.Kind, t.Text)
	}
	return nil
}
