package hcl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/secretyv/ASur/pkg/overflow"
)

const (
	// FormatHCL is the scenario format of .hcl files
	FormatHCL = "hcl"

	// FormatJSON is the scenario format of .json files
	FormatJSON = "json"
)

// DetectFormat determines if the content is JSON or HCL based on the file
// extension, then on content inspection
func DetectFormat(filename string, content []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hcl":
		return FormatHCL
	case ".json":
		return FormatJSON
	}

	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 {
		// JSON starts with { or [, HCL typically doesn't
		if trimmed[0] == '{' || trimmed[0] == '[' {
			return FormatJSON
		}
		if IsHCL(trimmed) {
			return FormatHCL
		}
	}

	// Default to JSON if we can't determine
	return FormatJSON
}

// jsonScenario is the JSON form of a scenario, with the step as a
// duration string.
type jsonScenario struct {
	Step              string              `json:"step"`
	MergeTransitTimes bool                `json:"merge_transit_times"`
	Overflows         []overflow.Overflow `json:"overflows"`
}

// ParseScenarioJSON parses JSON content into a Scenario
func ParseScenarioJSON(content []byte) (*Scenario, error) {
	var js jsonScenario
	if err := json.Unmarshal(content, &js); err != nil {
		return nil, fmt.Errorf("failed to decode JSON scenario: %w", err)
	}

	scenario := &Scenario{
		Step:              DefaultStep,
		MergeTransitTimes: js.MergeTransitTimes,
		Overflows:         js.Overflows,
	}
	if js.Step != "" {
		step, err := time.ParseDuration(js.Step)
		if err != nil {
			return nil, fmt.Errorf("failed to parse step: %w", err)
		}
		if step <= 0 {
			return nil, fmt.Errorf("step must be positive, got %s", step)
		}
		scenario.Step = step
	}
	for i := range scenario.Overflows {
		scenario.Overflows[i].Start = scenario.Overflows[i].Start.UTC()
		scenario.Overflows[i].End = scenario.Overflows[i].End.UTC()
	}
	return scenario, nil
}

// LoadScenario reads a scenario from a file in either format, or from
// every .hcl file of a directory.
func LoadScenario(path string) (*Scenario, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	if info.IsDir() {
		return ParseScenarioDirectory(path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	var scenario *Scenario
	if DetectFormat(path, content) == FormatHCL {
		scenario, err = ParseScenario(string(content))
	} else {
		scenario, err = ParseScenarioJSON(content)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scenario, nil
}
