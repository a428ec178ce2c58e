package instance

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/optiflow/optiflow/ctxlog"
)

// YAMLLoader loads problem instances from .yaml and .yml files.
type YAMLLoader struct{}

// NewYAMLLoader creates a YAML instance loader.
func NewYAMLLoader() *YAMLLoader { return &YAMLLoader{} }

type yamlFile struct {
	Knapsack yamlKnapsack `yaml:"knapsack"`
}

type yamlKnapsack struct {
	MaxWeight float64    `yaml:"max_weight"`
	Items     []yamlItem `yaml:"items"`
	Conflicts [][]string `yaml:"conflicts"`
}

type yamlItem struct {
	Name   string  `yaml:"name"`
	Profit float64 `yaml:"profit"`
	Weight float64 `yaml:"weight"`
}

// Load parses a single YAML instance file. Unknown fields are rejected so
// typos surface as errors instead of silently dropped data.
func (l *YAMLLoader) Load(ctx context.Context, path string) (*Instance, error) {
	ctxlog.FromContext(ctx).Debug("Loading YAML instance file.", "path", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open instance file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var root yamlFile
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", path, err)
	}

	inst := &Instance{MaxWeight: root.Knapsack.MaxWeight}
	for _, item := range root.Knapsack.Items {
		inst.Items = append(inst.Items, Item{
			Name:   item.Name,
			Profit: item.Profit,
			Weight: item.Weight,
		})
	}
	for _, pair := range root.Knapsack.Conflicts {
		if len(pair) != 2 {
			return nil, fmt.Errorf("invalid instance in %s: a conflict must name exactly two items, got %d", path, len(pair))
		}
		inst.Conflicts = append(inst.Conflicts, [2]string{pair[0], pair[1]})
	}

	if err := inst.validate(); err != nil {
		return nil, fmt.Errorf("invalid instance in %s: %w", path, err)
	}
	return inst, nil
}
