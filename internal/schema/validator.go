// Package schema checks decoded frontmatter against the embedded CUE schema.
package schema

import (
	"embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schemas/skill.cue
var schemaFS embed.FS

// Definition names in schemas/skill.cue.
const (
	DefFrontmatter = "#Frontmatter"
	DefSlug        = "#Slug"
)

// Validator holds the compiled skill schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator compiles the embedded skill schema.
func NewValidator() (*Validator, error) {
	content, err := schemaFS.ReadFile("schemas/skill.cue")
	if err != nil {
		return nil, fmt.Errorf("reading embedded schema: %w", err)
	}

	ctx := cuecontext.New()
	inst := ctx.CompileBytes(content, cue.Filename("skill.cue"))
	if err := inst.Err(); err != nil {
		return nil, fmt.Errorf("compiling skill schema: %w", err)
	}

	return &Validator{ctx: ctx, schema: inst}, nil
}

// CheckField validates a single frontmatter field against #Frontmatter.
// Every field in the definition is optional, so only the given field's
// constraint is exercised.
func (v *Validator) CheckField(field string, value any) error {
	return v.check(DefFrontmatter, map[string]any{field: value})
}

// IsSlug reports whether s satisfies #Slug.
func (v *Validator) IsSlug(s string) bool {
	return v.check(DefSlug, s) == nil
}

// check unifies value with the named definition and requires a concrete result.
func (v *Validator) check(def string, value any) error {
	defValue := v.schema.LookupPath(cue.ParsePath(def))
	if !defValue.Exists() {
		return fmt.Errorf("schema definition %s not found", def)
	}

	dataValue := v.ctx.Encode(value)
	if err := dataValue.Err(); err != nil {
		return fmt.Errorf("error encoding data: %w", err)
	}

	unified := defValue.Unify(dataValue)
	if err := unified.Err(); err != nil {
		return err
	}
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return nil
}
