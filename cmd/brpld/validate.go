package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeetee1235/contiki-ng-brpl/internal/brplconf"
	"github.com/zeetee1235/contiki-ng-brpl/internal/topology/parser"
	"github.com/zeetee1235/contiki-ng-brpl/internal/topology/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Args:  cobra.NoArgs,
	Short: "Validate a topology manifest and/or BRPL parameter file",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().String("topology", "", "path to topology YAML file to validate")
	validateCmd.Flags().String("write-defaults", "", "write the default BRPL parameter file to this path and exit")
}

func runValidate(cmd *cobra.Command, args []string) error {
	writeDefaults, _ := cmd.Flags().GetString("write-defaults")
	if writeDefaults != "" {
		if err := brplconf.DefaultParams().Save(writeDefaults); err != nil {
			return fmt.Errorf("failed to write default brpl config: %w", err)
		}
		fmt.Printf("wrote default BRPL parameters to %s\n", writeDefaults)
		return nil
	}

	params, err := brplconf.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("invalid brpl config: %w", err)
	}
	fmt.Printf("brpl config OK (scale=%d, trust_min=%d)\n", params.Scale, params.TrustMin)

	topoPath, _ := cmd.Flags().GetString("topology")
	if topoPath == "" {
		return nil
	}

	p := parser.New(nil)
	topo, err := p.ParseFile(topoPath)
	if err != nil {
		return fmt.Errorf("failed to parse topology: %w", err)
	}

	v := validate.New()
	if err := v.Validate(topo); err != nil {
		for _, e := range v.Errors {
			fmt.Printf("error: %s\n", e)
		}
		return fmt.Errorf("topology validation failed with %d errors", len(v.Errors))
	}
	for _, w := range v.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	fmt.Printf("topology %q is valid (%d DAGs, %d ticks)\n", topo.Metadata.Name, len(topo.Spec.DAGs), topo.Spec.Ticks)
	return nil
}
