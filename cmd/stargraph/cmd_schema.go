package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datar-psa/stargraph/api"
	"github.com/datar-psa/stargraph/schema"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema binary|numeric",
		Short:     "Print the JSON schema the model must answer with",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"binary", "numeric"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				s   map[string]any
				err error
			)
			switch args[0] {
			case "binary":
				s, err = schema.For[api.BinaryResult]()
			case "numeric":
				s, err = schema.For[api.NumericResult]()
			default:
				return fmt.Errorf("unknown result kind %q, want binary or numeric", args[0])
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		},
	}
}
