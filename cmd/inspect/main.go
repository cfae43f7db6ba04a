package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"icos-renderer/internal/config"
	"icos-renderer/internal/scheduler"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json or config.yaml")
	catalog := flag.String("catalog", "", "Directory of shape descriptors")
	url := flag.String("url", "", "Base URL of a descriptor server")
	params := flag.String("params", "", "Comma-separated parameter values (default: descriptor defaults)")
	chains := flag.Bool("chains", false, "Print the rotation chain of every instance")

	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: inspect [flags] <shape>")
		os.Exit(2)
	}
	shape := flag.Arg(0)

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{CatalogDir: *catalog, DescriptorURL: *url})

	ctx := context.Background()
	src, _ := cfg.Source(cfg.Logger(os.Stderr))
	axes, err := scheduler.LoadAxes(ctx, src)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Axes: X=%v Y=%v R=%v O=%v\n", axes.X, axes.Y, axes.R, axes.O)

	sess, err := scheduler.LoadSession(ctx, src, shape, axes)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	values := sess.Defaults()
	if *params != "" {
		values = values[:0]
		for _, f := range strings.Split(*params, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				fmt.Printf("Error: param %q: %v\n", f, err)
				os.Exit(1)
			}
			values = append(values, v)
		}
	}

	fmt.Printf("Shape: %s, Params: %d, Meshes: %d, Instances: %d\n",
		sess.Shape(), sess.Arity(), len(sess.Sets()), sess.Instances())
	for i, p := range sess.Params() {
		fmt.Printf("  t_%d = %s (default %.4f)\n", i+1, p.Formula, p.Default)
	}

	meshes, err := sess.Recompute(values)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	for i, m := range meshes {
		set := sess.Sets()[i]
		fmt.Printf("  Mesh[%d]: symmetry=%s, instances=%d, verts=%d, tris=%d\n",
			i, m.Tag, set.Len(), set.Patch().VertexCount(), len(set.Patch().Indices)/3)

		minR, maxR := math.Inf(1), math.Inf(-1)
		for _, b := range m.Buffers {
			for v := 0; v < b.VertexCount(); v++ {
				r := b.Vertex(v).Len()
				minR = math.Min(minR, r)
				maxR = math.Max(maxR, r)
			}
		}
		fmt.Printf("    Radius: [%.6f, %.6f]\n", minR, maxR)

		if *chains {
			for k := 0; k < set.Len(); k++ {
				inst := set.Instance(k)
				first := m.Buffers[k].Vertex(0)
				fmt.Printf("    [%2d] %-48s → (%.4f, %.4f, %.4f)\n",
					k, inst.Transform.String(), first[0], first[1], first[2])
			}
		}
	}
}
