package pattern

import (
	"os"

	"gopkg.in/yaml.v3"

	"patcheck/internal/errors"
	"patcheck/internal/factset"
)

// User-supplied template files are YAML, mirroring the builtin catalog
// structure. They register into the same registry and collide with
// builtin names as DuplicatePattern.

type yamlFile struct {
	Patterns []yamlTemplate `yaml:"patterns"`
}

type yamlTemplate struct {
	Name     string       `yaml:"name"`
	Category string       `yaml:"category"`
	Roles    []yamlRole   `yaml:"roles"`
	Rules    []yamlRule   `yaml:"rules"`
}

type yamlRole struct {
	Name         string       `yaml:"name"`
	Multiplicity string       `yaml:"multiplicity"`
	Methods      []yamlMethod `yaml:"methods"`
}

type yamlMethod struct {
	Arity   *int   `yaml:"arity"`
	Returns string `yaml:"returns"`
	Count   int    `yaml:"count"`
}

type yamlRule struct {
	Kind  string `yaml:"kind"`
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Order string `yaml:"order"`
}

// RegisterYAMLFile loads template definitions from a YAML file
func RegisterYAMLFile(reg *Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.New(errors.ConfigInvalid, "cannot read template file", err)
	}
	return RegisterYAML(reg, data)
}

// RegisterYAML decodes YAML template definitions and registers them
func RegisterYAML(reg *Registry, data []byte) error {
	var file yamlFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return errors.New(errors.ConfigInvalid, "cannot decode template file", err)
	}
	for _, yt := range file.Patterns {
		if err := reg.Register(yt.toTemplate()); err != nil {
			return err
		}
	}
	return nil
}

func (yt yamlTemplate) toTemplate() *Template {
	t := &Template{
		Name:     yt.Name,
		Category: Category(yt.Category),
	}
	for _, yr := range yt.Roles {
		role := Role{
			Name:         yr.Name,
			Multiplicity: Multiplicity(yr.Multiplicity),
		}
		if role.Multiplicity == "" {
			role.Multiplicity = One
		}
		for _, ym := range yr.Methods {
			shape := MethodShape{
				Arity:   AnyArity,
				Returns: factset.ReturnCategory(ym.Returns),
				Count:   ym.Count,
			}
			if ym.Arity != nil {
				shape.Arity = *ym.Arity
			}
			if shape.Count == 0 {
				shape.Count = 1
			}
			role.Requires = append(role.Requires, shape)
		}
		t.Roles = append(t.Roles, role)
	}
	for _, yr := range yt.Rules {
		t.Rules = append(t.Rules, RelationshipRule{
			Kind:  RuleKind(yr.Kind),
			From:  yr.From,
			To:    yr.To,
			Order: Order(yr.Order),
		})
	}
	return t
}
