package main

import (
	"fmt"

	"github.com/vela-phys/vela2d"
	"github.com/vela-phys/vela2d/internal/config"
)

// loadWorld resolves --scenario (and, if set, --tuning overriding the
// scenario's own tuning block) into a built World plus its named bodies.
func loadWorld() (config.ScenarioConfig, *vela2d.World, map[string]*vela2d.Body, error) {
	scenario, err := config.LoadScenario(flagScenario)
	if err != nil {
		return scenario, nil, nil, fmt.Errorf("load scenario: %w", err)
	}

	if flagTuning != "" {
		tuning, err := config.LoadTuning(flagTuning)
		if err != nil {
			return scenario, nil, nil, fmt.Errorf("load tuning: %w", err)
		}
		scenario.Tuning = tuning
	}

	world, bodies, err := scenario.Build()
	if err != nil {
		return scenario, nil, nil, fmt.Errorf("build scenario: %w", err)
	}

	return scenario, world, bodies, nil
}
