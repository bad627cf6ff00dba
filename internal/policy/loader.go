package policy

import (
	"os"

	"gopkg.in/yaml.v3"
)

// rulesFile is the on-disk layout of a policy rules file:
//
//	rules:
//	  - tool_name: run_shell
//	    args_pattern: '"command":\["rm"'
//	    decision: deny
//	    priority: 100
type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRulesFile reads rules from a YAML file. Decisions are validated;
// patterns are compiled later when the rules are handed to an Engine.
func LoadRulesFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &RulesFileError{Path: path, Cause: err}
	}
	return ParseRules(path, data)
}

// ParseRules decodes YAML rule data. name is only used in error messages.
func ParseRules(name string, data []byte) ([]Rule, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &RulesFileError{Path: name, Cause: err}
	}
	for i := range f.Rules {
		d, err := ParseDecision(string(f.Rules[i].Decision))
		if err != nil {
			return nil, &RulesFileError{Path: name, Cause: err}
		}
		f.Rules[i].Decision = d
	}
	return f.Rules, nil
}
