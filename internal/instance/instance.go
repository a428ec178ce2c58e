package instance

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/optiflow/optiflow/modules/knapsack"
)

// Item is one packable item of a problem instance.
type Item struct {
	Name   string
	Profit float64
	Weight float64
}

// Instance is a fully loaded knapsack problem instance, independent of the
// file format it was loaded from.
type Instance struct {
	MaxWeight float64
	Items     []Item
	Conflicts [][2]string
}

// Loader is the interface for a format-specific instance loader.
type Loader interface {
	// Load reads an instance from the given path and translates it into
	// the format-agnostic model.
	Load(ctx context.Context, path string) (*Instance, error)
}

// ForPath returns the loader matching the file's extension.
func ForPath(path string) (Loader, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".hcl":
		return NewHCLLoader(), nil
	case ".yaml", ".yml":
		return NewYAMLLoader(), nil
	default:
		return nil, fmt.Errorf("unsupported instance file extension %q (expected .hcl, .yaml or .yml)", ext)
	}
}

// validate checks the structural constraints shared by every format.
func (in *Instance) validate() error {
	seen := make(map[string]struct{}, len(in.Items))
	for _, item := range in.Items {
		if item.Name == "" {
			return fmt.Errorf("an item is missing a name")
		}
		if _, dup := seen[item.Name]; dup {
			return fmt.Errorf("item %q is defined more than once", item.Name)
		}
		seen[item.Name] = struct{}{}
	}
	return nil
}

// HasConflicts reports whether the instance declares any conflict pairs.
func (in *Instance) HasConflicts() bool {
	return len(in.Conflicts) > 0
}

// BaseData converts the instance into the base module's input value.
func (in *Instance) BaseData() knapsack.BaseData {
	data := knapsack.BaseData{
		Items:     make([]string, 0, len(in.Items)),
		Profits:   make(map[string]float64, len(in.Items)),
		Weights:   make(map[string]float64, len(in.Items)),
		MaxWeight: in.MaxWeight,
	}
	for _, item := range in.Items {
		data.Items = append(data.Items, item.Name)
		data.Profits[item.Name] = item.Profit
		data.Weights[item.Name] = item.Weight
	}
	return data
}

// ConflictData converts the instance's conflicts into the conflict module's
// input value.
func (in *Instance) ConflictData() knapsack.ConflictData {
	return knapsack.ConflictData{Conflicts: in.Conflicts}
}
