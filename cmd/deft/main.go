// Package main provides the deft command line tool: backend and operator
// listings, a pipeline demo and a small matmul benchmark.
package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/deft-ml/deft"
	"github.com/deft-ml/deft/backend"
	"github.com/deft-ml/deft/backend/webgpu"
	"github.com/deft-ml/deft/graph"
	"github.com/deft-ml/deft/tensor"
)

const version = "v0.1.0-dev"

// normalize is the demo definition: a numerically shifted softmax.
var normalize = deft.MustNew("normalize", func(x *deft.Tensor) *deft.Tensor {
	e := x.Sub(x.Mean()).Exp()
	return e.Div(e.Sum())
})

// matmulBench multiplies two square matrices.
var matmulBench = deft.MustNew("matmul_bench", func(a, b *deft.Tensor) *deft.Tensor {
	return a.MatMul(b)
})

func main() {
	if err := NewCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// NewCLI builds the root command.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "deft",
		Short:         "Dual-mode tensor definitions for Go",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Println("deft", version)
				return
			}
			cmd.Print(cmd.UsageString())
		},
	}
	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	rootCmd.AddCommand(
		newBackendsCmd(),
		newOpsCmd(),
		newDemoCmd(),
		newBenchCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("deft", version)
		},
	}
}

func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List compiler backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			registered := map[string]bool{}
			var data [][]string
			for _, name := range backend.Names() {
				registered[name] = true
				status := "registered"
				if name == deft.DefaultCompiler() {
					status = "registered (default)"
				}
				data = append(data, []string{name, status})
			}
			if !registered[webgpu.Name] {
				status := "unavailable"
				if webgpu.IsAvailable() {
					status = "available, not registered"
				}
				data = append(data, []string{webgpu.Name, status})
			}

			renderTable([]string{"NAME", "STATUS"}, data)
			return nil
		},
	}
}

func newOpsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List graph operators",
		RunE: func(cmd *cobra.Command, args []string) error {
			var data [][]string
			for _, k := range graph.Kinds() {
				data = append(data, []string{k.String(), opClass(k)})
			}
			renderTable([]string{"OPERATOR", "CLASS"}, data)
			return nil
		},
	}
}

func opClass(k graph.OpKind) string {
	switch {
	case k == graph.OpParameter || k == graph.OpConstant:
		return "leaf"
	case k.IsBinary():
		return "binary"
	case k.IsUnary():
		return "unary"
	case k.IsReduction():
		return "reduction"
	case k == graph.OpMatMul:
		return "contraction"
	}
	return "structure"
}

func newDemoCmd() *cobra.Command {
	var compiler string
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Trace, compile and run the normalize definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
			if err != nil {
				return err
			}

			g, err := normalize.Trace(x)
			if err != nil {
				return err
			}
			fmt.Printf("graph: %d nodes, signature %s\n", g.NumNodes(), g.Signature())

			start := time.Now()
			out, err := normalize.CallWith1(deft.CallConfig{Compiler: compiler}, x)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			var data [][]string
			vals := out.AsFloat32()
			cols := out.Shape()[1]
			for r := 0; r < out.Shape()[0]; r++ {
				row := make([]string, cols)
				for c := 0; c < cols; c++ {
					row[c] = fmt.Sprintf("%.6f", vals[r*cols+c])
				}
				data = append(data, row)
			}
			renderTable(nil, data)
			fmt.Printf("compiled and ran in %s (artifacts cached: %d)\n", elapsed, normalize.CompileCount())
			return nil
		},
	}
	cmd.Flags().StringVar(&compiler, "compiler", "", "Compiler backend (default: resolved configuration)")
	return cmd
}

func newBenchCmd() *cobra.Command {
	var (
		size     int
		runs     int
		workers  int
		compiler string
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark square matmul through the call pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := tensor.Full(tensor.Shape{size, size}, 0.5, tensor.Float32)
			if err != nil {
				return err
			}
			b, err := tensor.Full(tensor.Shape{size, size}, 2.0, tensor.Float32)
			if err != nil {
				return err
			}

			cfg := deft.CallConfig{Compiler: compiler}

			// First call compiles; exclude it from timing.
			if _, err := matmulBench.CallWith1(cfg, a, b); err != nil {
				return err
			}

			start := time.Now()
			var g errgroup.Group
			g.SetLimit(workers)
			for i := 0; i < runs; i++ {
				g.Go(func() error {
					_, err := matmulBench.CallWith1(cfg, a, b)
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			elapsed := time.Since(start)

			perCall := elapsed / time.Duration(runs)
			flops := 2 * float64(size) * float64(size) * float64(size) * float64(runs)
			gflops := flops / elapsed.Seconds() / 1e9

			renderTable([]string{"SIZE", "RUNS", "WORKERS", "TOTAL", "PER CALL", "GFLOP/S"}, [][]string{{
				fmt.Sprintf("%dx%d", size, size),
				fmt.Sprintf("%d", runs),
				fmt.Sprintf("%d", workers),
				elapsed.Round(time.Millisecond).String(),
				perCall.Round(time.Microsecond).String(),
				fmt.Sprintf("%.2f", gflops),
			}})
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 256, "Matrix dimension")
	cmd.Flags().IntVar(&runs, "runs", 16, "Timed calls")
	cmd.Flags().IntVar(&workers, "workers", runtime.GOMAXPROCS(0), "Concurrent callers")
	cmd.Flags().StringVar(&compiler, "compiler", "", "Compiler backend (default: resolved configuration)")
	return cmd
}

func renderTable(header []string, data [][]string) {
	table := tablewriter.NewWriter(os.Stdout)
	if header != nil {
		table.SetHeader(header)
	}
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}
