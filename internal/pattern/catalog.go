package pattern

import (
	_ "embed"

	"github.com/BurntSushi/toml"

	"patcheck/internal/errors"
	"patcheck/internal/factset"
)

//go:embed catalog.toml
var builtinCatalog []byte

// catalogFile mirrors the TOML template definition format
type catalogFile struct {
	Patterns []catalogTemplate `toml:"patterns"`
}

type catalogTemplate struct {
	Name     string           `toml:"name"`
	Category string           `toml:"category"`
	Roles    []catalogRole    `toml:"roles"`
	Rules    []catalogRule    `toml:"rules"`
}

type catalogRole struct {
	Name         string          `toml:"name"`
	Multiplicity string          `toml:"multiplicity"`
	Methods      []catalogMethod `toml:"methods"`
}

type catalogMethod struct {
	Arity   *int   `toml:"arity"` // omitted means any arity
	Returns string `toml:"returns"`
	Count   int    `toml:"count"` // omitted means 1
}

type catalogRule struct {
	Kind  string `toml:"kind"`
	From  string `toml:"from"`
	To    string `toml:"to"`
	Order string `toml:"order"`
}

// Builtin returns a registry loaded with the embedded catalog of the 23
// classic pattern templates.
func Builtin() (*Registry, error) {
	reg := NewRegistry()
	if err := RegisterTOML(reg, builtinCatalog); err != nil {
		return nil, err
	}
	return reg, nil
}

// RegisterTOML decodes TOML template definitions and registers them
func RegisterTOML(reg *Registry, data []byte) error {
	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return errors.New(errors.ConfigInvalid, "cannot decode template catalog", err)
	}
	for _, ct := range file.Patterns {
		if err := reg.Register(ct.toTemplate()); err != nil {
			return err
		}
	}
	return nil
}

func (ct catalogTemplate) toTemplate() *Template {
	t := &Template{
		Name:     ct.Name,
		Category: Category(ct.Category),
	}
	for _, cr := range ct.Roles {
		role := Role{
			Name:         cr.Name,
			Multiplicity: Multiplicity(cr.Multiplicity),
		}
		if role.Multiplicity == "" {
			role.Multiplicity = One
		}
		for _, cm := range cr.Methods {
			shape := MethodShape{
				Arity:   AnyArity,
				Returns: factset.ReturnCategory(cm.Returns),
				Count:   cm.Count,
			}
			if cm.Arity != nil {
				shape.Arity = *cm.Arity
			}
			if shape.Count == 0 {
				shape.Count = 1
			}
			role.Requires = append(role.Requires, shape)
		}
		t.Roles = append(t.Roles, role)
	}
	for _, cr := range ct.Rules {
		t.Rules = append(t.Rules, RelationshipRule{
			Kind:  RuleKind(cr.Kind),
			From:  cr.From,
			To:    cr.To,
			Order: Order(cr.Order),
		})
	}
	return t
}
