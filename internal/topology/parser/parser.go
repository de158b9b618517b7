// Package parser reads topology manifests from YAML, with ${VAR}/$VAR
// substitution from parser-supplied variables or the environment. Grounded
// on pkg/scenario/parser/parser.go.
package parser

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zeetee1235/contiki-ng-brpl/internal/topology"
)

var varPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// Parser parses topology YAML, substituting Variables (then the
// environment) before unmarshaling.
type Parser struct {
	Variables map[string]string
}

// New returns a Parser seeded with variables, which may be nil.
func New(variables map[string]string) *Parser {
	if variables == nil {
		variables = make(map[string]string)
	}
	return &Parser{Variables: variables}
}

// ParseFile reads path and parses it as a Topology.
func (p *Parser) ParseFile(path string) (*topology.Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topology file: %w", err)
	}
	return p.Parse(data)
}

// Parse parses data as a Topology after variable substitution.
func (p *Parser) Parse(data []byte) (*topology.Topology, error) {
	substituted := p.substituteVariables(string(data))

	var t topology.Topology
	if err := yaml.Unmarshal([]byte(substituted), &t); err != nil {
		return nil, fmt.Errorf("failed to parse topology YAML: %w", err)
	}
	return &t, nil
}

func (p *Parser) substituteVariables(content string) string {
	return varPattern.ReplaceAllStringFunc(content, func(match string) string {
		var name string
		if strings.HasPrefix(match, "${") {
			name = match[2 : len(match)-1]
		} else {
			name = match[1:]
		}

		if val, ok := p.Variables[name]; ok {
			return val
		}
		if val := os.Getenv(name); val != "" {
			return val
		}
		return match
	})
}

// SetVariable sets a single substitution variable.
func (p *Parser) SetVariable(key, value string) {
	p.Variables[key] = value
}
