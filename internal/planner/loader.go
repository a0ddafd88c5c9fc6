package planner

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// LoadOverrides reads a YAML action-template file keyed by incident type:
//
//	water_main_break:
//	  - step: Notify Water Dept on-call
//	    owner: Water
//	    priority: 1
//
// The result feeds NewWithOverrides; a listed type replaces the built-in
// template for that type entirely.
func LoadOverrides(path string) (map[string][]Template, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load action templates %s: %w", path, err)
	}

	overrides := make(map[string][]Template)
	for _, typ := range k.MapKeys("") {
		var tpls []Template
		if err := k.UnmarshalWithConf(typ, &tpls, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
			return nil, fmt.Errorf("parse action template %q: %w", typ, err)
		}
		for i, t := range tpls {
			if t.Step == "" {
				return nil, fmt.Errorf("action template %q entry %d: step is required", typ, i)
			}
		}
		overrides[typ] = tpls
	}
	return overrides, nil
}
