// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed as part of the siltc project.

// Command siltc-opt is the pass-pipeliner CLI (spec §6):
//
//	siltc-opt optimize --pass SimplifyCFG <file>
//	siltc-opt dump-cfg [--dom] <file>
//
// optimize loads a textual module, runs the named passes in flag order
// inside one pipeline stage, and writes the resulting module's textual
// form to stdout. dump-cfg renders the control-flow graph (and,
// optionally, the dominator tree) of every top-level scope as Graphviz
// source. Exit code 0 on success, 1 on a parse error or
// VerificationFailure, 2 on an InternalInvariantViolation.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/silt-lang/siltc/internal/diag"
	"github.com/silt-lang/siltc/internal/dotdump"
	"github.com/silt-lang/siltc/internal/girtext"
	"github.com/silt-lang/siltc/internal/ir"
	"github.com/silt-lang/siltc/internal/pipeline"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCodeFor(err)
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "siltc-opt",
		Short:         "Load, transform, and dump textual GraphIR modules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var passNames []string
	optimizeCmd := &cobra.Command{
		Use:   "optimize <file>",
		Short: "Run --pass flags over a module and print its textual form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(args[0], passNames, cmd.OutOrStdout())
		},
	}
	optimizeCmd.Flags().StringArrayVar(&passNames, "pass", nil, "pass to run, repeatable; run in flag order")
	root.AddCommand(optimizeCmd)

	var dom bool
	dumpCFGCmd := &cobra.Command{
		Use:   "dump-cfg <file>",
		Short: "Dump a module's control-flow graph (and optionally dominator tree) as Graphviz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDumpCFG(args[0], dom, cmd.OutOrStdout())
		},
	}
	dumpCFGCmd.Flags().BoolVar(&dom, "dom", false, "overlay the dominator tree")
	root.AddCommand(dumpCFGCmd)

	return root
}

func loadModule(path string) (*ir.Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.IllFormedInput(diag.Span{File: path}, "siltc-opt: %s", err)
	}
	m, err := girtext.Parse(string(src))
	if err != nil {
		return nil, err
	}
	return m, nil
}

func runOptimize(path string, passNames []string, out io.Writer) error {
	m, err := loadModule(path)
	if err != nil {
		return err
	}

	passes, err := resolvePasses(passNames)
	if err != nil {
		return err
	}

	p := pipeline.New()
	if err := p.AddStage("cli", passes...); err != nil {
		return err
	}
	if err := p.Execute(m); err != nil {
		return err
	}
	if err := ir.Verify(m); err != nil {
		return err
	}

	_, err = out.Write([]byte(girtext.Write(m)))
	return err
}

func runDumpCFG(path string, dom bool, out io.Writer) error {
	m, err := loadModule(path)
	if err != nil {
		return err
	}

	for _, c := range m.Continuations() {
		if len(c.Predecessors()) != 0 {
			continue
		}
		if _, err := out.Write([]byte(dotdump.Write(c, dotdump.Options{Dominators: dom}))); err != nil {
			return err
		}
	}
	return nil
}

// exitCodeFor implements spec §6's exit code contract: 1 for a parse
// error or VerificationFailure, 2 for an InternalInvariantViolation
// (checked across every constituent of a multierr-accumulated error so a
// pipeline run that hit both kinds reports the more severe one), 1 for
// anything else (unknown pass, I/O failure).
func exitCodeFor(err error) int {
	for _, e := range multierr.Errors(err) {
		if diag.Is(e, diag.KindInternalInvariantViolation) {
			return 2
		}
	}
	return 1
}
