// Package main provides the gradix CLI.
//
// The eval command differentiates the built-in worked function
//
//	f(x) = (5 + x^3) - ln((x^2-5)(4-3x)) / (x-4)
//
// with both engines at a chosen point and prints the results side by side.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gradix-ml/gradix/expr"
	"github.com/gradix-ml/gradix/graph"
)

const version = "v0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gradix:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gradix",
		Short:         "Scalar automatic differentiation in forward and reverse mode",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newVersionCmd(), newEvalCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Printf("gradix %s\n", version)
		},
	}
}

func newEvalCmd() *cobra.Command {
	var x float64
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate and differentiate the worked function at a point",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEval(x)
		},
	}
	cmd.Flags().Float64Var(&x, "x", 1.5, "point at which to evaluate and differentiate")
	return cmd
}

// workedExpr builds f(x) = (5 + x^3) - ln((x^2-5)(4-3x)) / (x-4) as an
// expression tree.
func workedExpr() *expr.Expr {
	inner := expr.Product(
		expr.Subtract(expr.Power(2), expr.Constant(5)),
		expr.Subtract(expr.Constant(4), expr.Product(expr.Constant(3), expr.Power(1))),
	)
	return expr.Subtract(
		expr.Add(expr.Constant(5), expr.Power(3)),
		expr.Divide(expr.Log(inner), expr.Subtract(expr.Power(1), expr.Constant(4))),
	)
}

// workedGraph builds the same function as a computation graph, returning
// the graph plus the input and output node handles.
func workedGraph(x0 float64) (*graph.Graph, graph.NodeID, graph.NodeID) {
	g := graph.New()
	x := g.Input(x0)
	five := g.Constant(5)
	four := g.Constant(4)
	three := g.Constant(3)

	inner := g.Mul(
		g.Sub(g.Pow(x, 2), five),
		g.Sub(four, g.Mul(three, x)),
	)
	ratio := g.Div(g.Log(inner), g.Sub(x, four))
	out := g.Sub(g.Add(five, g.Pow(x, 3)), ratio)
	return g, x, out
}

func runEval(x0 float64) error {
	f := workedExpr()

	value, err := f.Evaluate(x0)
	if err != nil {
		return fmt.Errorf("evaluate %s at x=%g: %w", f, x0, err)
	}
	forward, err := f.Differentiate(x0)
	if err != nil {
		return fmt.Errorf("differentiate %s at x=%g: %w", f, x0, err)
	}

	g, x, out := workedGraph(x0)
	if err := g.Forward(); err != nil {
		return fmt.Errorf("reverse mode at x=%g: %w", x0, err)
	}
	g.Backward(out, 1)
	backward := g.Gradient(x)

	fmt.Println("x0\tf(x0)\tForward f'(x0)\tBackward f'(x0)")
	fmt.Printf("%g\t%g\t%g\t%g\n", x0, value, forward, backward)
	return nil
}
