package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datar-psa/stargraph/suite"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <suite>...",
		Short: "Check criteria suites without calling a model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				s, err := suite.LoadFile(path)
				if err != nil {
					failed++
					fmt.Fprintf(out, "%s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(out, "%s: ok (%s, %s, %d criteria)\n", path, s.Name, s.ResolvedKind(), len(s.Criteria))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d suites are invalid", failed, len(args))
			}
			return nil
		},
	}
}
