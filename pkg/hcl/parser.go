package hcl

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/secretyv/ASur/pkg/overflow"
)

// DefaultStep is the injection step used when a scenario sets none.
const DefaultStep = 300 * time.Second

// HCLScenario represents the HCL scenario structure
type HCLScenario struct {
	Step              *string       `hcl:"step,optional"`
	MergeTransitTimes *bool         `hcl:"merge_transit_times,optional"`
	Overflows         []HCLOverflow `hcl:"overflow,block"`
}

// HCLOverflow represents a single spill event
type HCLOverflow struct {
	Label      string   `hcl:"label,label"`
	Point      string   `hcl:"point"`
	Start      string   `hcl:"start"`
	End        string   `hcl:"end"`
	TideCycles []string `hcl:"tide_cycles,optional"`
}

// Scenario is a batch of overflow events with its computation settings.
type Scenario struct {
	Step              time.Duration       `json:"step"`
	MergeTransitTimes bool                `json:"merge_transit_times"`
	Labels            []string            `json:"labels,omitempty"`
	Overflows         []overflow.Overflow `json:"overflows"`
}

// evalContext holds the functions available in scenario and config files.
// timestamp() checks an RFC 3339 instant and normalizes it to UTC.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{},
		Functions: map[string]function.Function{
			"timestamp": function.New(&function.Spec{
				Params: []function.Parameter{
					{
						Name: "timestamp",
						Type: cty.String,
					},
				},
				Type: function.StaticReturnType(cty.String),
				Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
					t, err := time.Parse(time.RFC3339, args[0].AsString())
					if err != nil {
						return cty.NilVal, err
					}
					return cty.StringVal(t.UTC().Format(time.RFC3339)), nil
				},
			}),
		},
	}
}

// ParseScenario parses HCL content into a Scenario
func ParseScenario(hclContent string) (*Scenario, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL([]byte(hclContent), "scenario.hcl")
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return parseScenarioFromFile(file)
}

// parseScenarioFromFile decodes a scenario from an HCL file object
func parseScenarioFromFile(file *hcl.File) (*Scenario, error) {
	var hclScenario HCLScenario
	diags := gohcl.DecodeBody(file.Body, evalContext(), &hclScenario)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL body: %s", diags.Error())
	}
	return convertHCLScenario(&hclScenario)
}

func convertHCLScenario(hclScenario *HCLScenario) (*Scenario, error) {
	scenario := &Scenario{
		Step:      DefaultStep,
		Labels:    make([]string, 0, len(hclScenario.Overflows)),
		Overflows: make([]overflow.Overflow, 0, len(hclScenario.Overflows)),
	}

	if hclScenario.Step != nil {
		step, err := time.ParseDuration(*hclScenario.Step)
		if err != nil {
			return nil, fmt.Errorf("failed to parse step: %w", err)
		}
		if step <= 0 {
			return nil, fmt.Errorf("step must be positive, got %s", step)
		}
		scenario.Step = step
	}
	if hclScenario.MergeTransitTimes != nil {
		scenario.MergeTransitTimes = *hclScenario.MergeTransitTimes
	}

	seen := make(map[string]bool, len(hclScenario.Overflows))
	for _, hclOfl := range hclScenario.Overflows {
		if seen[hclOfl.Label] {
			return nil, fmt.Errorf("duplicate overflow %q", hclOfl.Label)
		}
		seen[hclOfl.Label] = true

		start, err := time.Parse(time.RFC3339, hclOfl.Start)
		if err != nil {
			return nil, fmt.Errorf("overflow %q: failed to parse start time: %w", hclOfl.Label, err)
		}
		end, err := time.Parse(time.RFC3339, hclOfl.End)
		if err != nil {
			return nil, fmt.Errorf("overflow %q: failed to parse end time: %w", hclOfl.Label, err)
		}

		scenario.Labels = append(scenario.Labels, hclOfl.Label)
		scenario.Overflows = append(scenario.Overflows, overflow.Overflow{
			Point:      hclOfl.Point,
			Start:      start.UTC(),
			End:        end.UTC(),
			TideCycles: hclOfl.TideCycles,
		})
	}

	return scenario, nil
}

// IsHCL attempts to detect if the given content is in HCL format
func IsHCL(content []byte) bool {
	_, diags := hclsyntax.ParseConfig(content, "", hcl.Pos{Line: 1, Column: 1})
	return !diags.HasErrors()
}
