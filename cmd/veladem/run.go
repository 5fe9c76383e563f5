package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagSteps int
	flagDt    float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Step a scenario headlessly and print a profile summary",
	Args:  cobra.NoArgs,
	Run:   runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagSteps, "steps", 300, "Number of simulation steps")
	runCmd.Flags().Float64Var(&flagDt, "dt", 1.0/60.0, "Seconds per step")
}

func runRun(cmd *cobra.Command, args []string) {
	scenario, world, bodies, err := loadWorld()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := world.Config()

	var solveInit, solveVelocity, solvePosition float64
	for i := 0; i < flagSteps; i++ {
		p := world.Step(flagDt, cfg.VelocityIterations, cfg.PositionIterations)
		solveInit += p.SolveInit
		solveVelocity += p.SolveVelocity
		solvePosition += p.SolvePosition
	}

	fmt.Printf("stepped %d bodies, %d joints for %d steps at dt=%.4f\n",
		len(scenario.Bodies), len(scenario.Joints), flagSteps, flagDt)
	fmt.Printf("solveInit=%.3fms solveVelocity=%.3fms solvePosition=%.3fms\n",
		solveInit, solveVelocity, solvePosition)
	fmt.Printf("proxies=%d treeHeight=%d treeQuality=%.3f\n",
		world.ProxyCount(), world.TreeHeight(), world.TreeQuality())

	for _, bc := range scenario.Bodies {
		if bc.Name == "" {
			continue
		}
		body := bodies[bc.Name]
		pos := body.GetPosition()
		fmt.Printf("  %-10s pos=(%.3f, %.3f) angle=%.3f awake=%v\n",
			bc.Name, pos.X, pos.Y, body.GetAngle(), body.IsAwake())
	}
}
