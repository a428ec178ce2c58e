package instance

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/optiflow/optiflow/ctxlog"
)

// HCLLoader loads problem instances from .hcl files.
type HCLLoader struct{}

// NewHCLLoader creates an HCL instance loader.
func NewHCLLoader() *HCLLoader { return &HCLLoader{} }

// hclFile represents the top-level structure of an instance file for
// decoding. The knapsack block's body is kept raw and extracted against
// knapsackBodySchema afterwards.
type hclFile struct {
	Knapsack *hclKnapsackBlock `hcl:"knapsack,block"`
}

type hclKnapsackBlock struct {
	Body hcl.Body `hcl:",remain"`
}

var knapsackBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "max_weight", Required: true},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "item", LabelNames: []string{"name"}},
		{Type: "conflict"},
	},
}

var itemBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "profit", Required: true},
		{Name: "weight", Required: true},
	},
}

var conflictBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "items", Required: true},
	},
}

// Load parses a single HCL instance file.
func (l *HCLLoader) Load(ctx context.Context, path string) (*Instance, error) {
	ctxlog.FromContext(ctx).Debug("Loading HCL instance file.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}
	if root.Knapsack == nil {
		return nil, fmt.Errorf("file %s contains no knapsack block", path)
	}

	content, diags := root.Knapsack.Body.Content(knapsackBodySchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid knapsack block in %s: %w", path, diags)
	}

	inst := &Instance{}
	if err := decodeFloat(content.Attributes["max_weight"], &inst.MaxWeight); err != nil {
		return nil, fmt.Errorf("in %s: %w", path, err)
	}

	for _, block := range content.Blocks {
		switch block.Type {
		case "item":
			item, err := decodeItem(block)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", path, err)
			}
			inst.Items = append(inst.Items, item)
		case "conflict":
			pair, err := decodeConflict(block)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", path, err)
			}
			inst.Conflicts = append(inst.Conflicts, pair)
		}
	}

	if err := inst.validate(); err != nil {
		return nil, fmt.Errorf("invalid instance in %s: %w", path, err)
	}
	return inst, nil
}

func decodeItem(block *hcl.Block) (Item, error) {
	// The schema guarantees one label.
	item := Item{Name: block.Labels[0]}

	content, diags := block.Body.Content(itemBodySchema)
	if diags.HasErrors() {
		return item, fmt.Errorf("invalid item %q: %w", item.Name, diags)
	}
	if err := decodeFloat(content.Attributes["profit"], &item.Profit); err != nil {
		return item, fmt.Errorf("item %q: %w", item.Name, err)
	}
	if err := decodeFloat(content.Attributes["weight"], &item.Weight); err != nil {
		return item, fmt.Errorf("item %q: %w", item.Name, err)
	}
	return item, nil
}

func decodeConflict(block *hcl.Block) ([2]string, error) {
	var pair [2]string

	content, diags := block.Body.Content(conflictBodySchema)
	if diags.HasErrors() {
		return pair, fmt.Errorf("invalid conflict block: %w", diags)
	}

	var items []string
	if diags := gohcl.DecodeExpression(content.Attributes["items"].Expr, nil, &items); diags.HasErrors() {
		return pair, fmt.Errorf("invalid conflict items: %w", diags)
	}
	if len(items) != 2 {
		return pair, fmt.Errorf("a conflict must name exactly two items, got %d", len(items))
	}
	pair[0], pair[1] = items[0], items[1]
	return pair, nil
}

// decodeFloat evaluates a literal numeric attribute. A nil eval context is
// used because instance files hold literal values only.
func decodeFloat(attr *hcl.Attribute, out *float64) error {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return fmt.Errorf("attribute %q: %w", attr.Name, diags)
	}
	if err := gocty.FromCtyValue(val, out); err != nil {
		return fmt.Errorf("attribute %q: %w", attr.Name, err)
	}
	return nil
}
