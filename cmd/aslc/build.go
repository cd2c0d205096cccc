package main

import (
	"fmt"

	"github.com/aslcompiler/aslc/compiler"
	"github.com/spf13/cobra"
)

func newBuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build [source_file]",
		Short: "Compile a source file and print its three-address intermediate representation",
		Args:  cobra.ExactArgs(1),
		RunE:  runBuild,
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	f, err := openFile(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := compiler.Compile(f)
	if err != nil {
		return err
	}
	if len(result.Diagnostics) > 0 {
		for _, d := range result.Diagnostics {
			fmt.Printf("line %d: %s: %s\n", d.Node.Line(), d.Kind, d.Message)
		}
		return fmt.Errorf("%d diagnostic(s)", len(result.Diagnostics))
	}

	for _, sub := range result.IR.Subroutines {
		fmt.Printf("func %s\n", sub.Name)
		for _, p := range sub.Params {
			fmt.Printf("  param %s %s arrayref=%v\n", p.Name, p.TypeText, p.ByArrayRef)
		}
		for _, l := range sub.Locals {
			fmt.Printf("  local %s %s[%d]\n", l.Name, l.ElemTypeText, l.Size)
		}
		for _, i := range sub.Instrs {
			fmt.Printf("  %s\n", i)
		}
	}
	return nil
}
