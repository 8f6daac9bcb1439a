package hclcfg

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/pzsh/internal/config"
)

// literalString evaluates an expression that must not reference anything.
// Raw fragments and tool settings are required to be literals so the model
// is complete at load time.
func literalString(expr hcl.Expression) (string, *hcl.Diagnostic) {
	if len(expr.Variables()) > 0 {
		return "", &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Value must be a literal",
			Detail:   "References are not allowed here.",
			Subject:  expr.Range().Ptr(),
		}
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return "", diags[0]
	}
	var out string
	if err := convertTo(val, cty.String, &out); err != nil {
		return "", &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid value",
			Detail:   err.Error(),
			Subject:  expr.Range().Ptr(),
		}
	}
	return out, nil
}

func convertTo(val cty.Value, ty cty.Type, target any) error {
	conv, err := convert.Convert(val, ty)
	if err != nil {
		return err
	}
	return gocty.FromCtyValue(conv, target)
}

// settingsDecoder walks a block's attributes against a fixed set of typed
// setters, rejecting unknown names.
type settingsDecoder struct {
	setters map[string]func(cty.Value) error
}

func (d *settingsDecoder) decode(block *hcl.Block) hcl.Diagnostics {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return diags
	}
	for name, attr := range attrs {
		set, ok := d.setters[name]
		if !ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  fmt.Sprintf("Unknown %s setting", block.Type),
				Detail:   fmt.Sprintf("There is no setting named %q.", name),
				Subject:  attr.Range.Ptr(),
			})
			continue
		}
		val, valDiags := attr.Expr.Value(nil)
		if valDiags.HasErrors() {
			diags = append(diags, valDiags...)
			continue
		}
		if err := set(val); err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  fmt.Sprintf("Invalid value for %s", name),
				Detail:   err.Error(),
				Subject:  attr.Range.Ptr(),
			})
		}
	}
	return diags
}

func uint32Setter(dst *uint32) func(cty.Value) error {
	return func(v cty.Value) error { return convertTo(v, cty.Number, dst) }
}

func stringSetter(dst *string) func(cty.Value) error {
	return func(v cty.Value) error { return convertTo(v, cty.String, dst) }
}

func stringListSetter(dst *[]string) func(cty.Value) error {
	return func(v cty.Value) error {
		conv, err := convert.Convert(v, cty.List(cty.String))
		if err != nil {
			return err
		}
		var out []string
		for it := conv.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, ev.AsString())
		}
		*dst = out
		return nil
	}
}

func (l *Loader) decodePerformance(block *hcl.Block, cfg *config.RawConfig) hcl.Diagnostics {
	d := &settingsDecoder{setters: map[string]func(cty.Value) error{
		"startup_budget_ms": uint32Setter(&cfg.Performance.StartupBudgetMS),
		"prompt_budget_ms":  uint32Setter(&cfg.Performance.PromptBudgetMS),
	}}
	return d.decode(block)
}

func (l *Loader) decodeFeatures(block *hcl.Block, cfg *config.RawConfig) hcl.Diagnostics {
	d := &settingsDecoder{setters: map[string]func(cty.Value) error{
		"enabled": stringListSetter(&cfg.Features.Enabled),
		"lazy":    stringListSetter(&cfg.Features.Lazy),
	}}
	return d.decode(block)
}

func (l *Loader) decodePrompt(block *hcl.Block, cfg *config.RawConfig) hcl.Diagnostics {
	cfg.Prompt.Span = block.DefRange
	d := &settingsDecoder{setters: map[string]func(cty.Value) error{
		"format":     stringSetter(&cfg.Prompt.Format),
		"theme":      stringSetter(&cfg.Prompt.Theme),
		"git_ttl_ms": uint32Setter(&cfg.Prompt.GitTTLMS),
	}}
	return d.decode(block)
}
