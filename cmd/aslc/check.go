package main

import (
	"fmt"

	"github.com/aslcompiler/aslc/compiler"
	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [source_file]",
		Short: "Run the front end and report semantic diagnostics without generating code",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	f, err := openFile(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	_, diags, err := compiler.Check(f)
	if err != nil {
		return err
	}
	if len(diags) == 0 {
		fmt.Println("ok")
		return nil
	}
	for _, d := range diags {
		fmt.Printf("line %d: %s: %s\n", d.Node.Line(), d.Kind, d.Message)
	}
	return fmt.Errorf("%d diagnostic(s)", len(diags))
}
