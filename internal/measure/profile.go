// Package measure maps opaque measure ids to value- and score-computing
// behavior. The profile document declares the measures and names their
// computers; the registry holds the fixed implementation surface those
// names resolve against. Resolution is a pure lookup and every reference is
// checked at load time.
package measure

import (
	"encoding/json"
	"io"
	"os"

	"github.com/go-playground/validator/v10"

	pipeerr "twmw/internal/errors"
)

// Definition is the display and dispatch metadata of one measure.
type Definition struct {
	Name      string `json:"name" validate:"required"`
	Unit      string `json:"unit"`
	Category  string `json:"category"`
	ValueFunc string `json:"func_value"`
	ScoreFunc string `json:"func_score"`
}

// FuncFor returns the function reference for a role, or "" if the measure
// does not participate in that role.
func (d Definition) FuncFor(role Role) string {
	if role == RoleScore {
		return d.ScoreFunc
	}
	return d.ValueFunc
}

// Profile is the ordered mapping from measure id to definition. Declaration
// order is retained; it defines the category and measure sort orders used
// by reporting.
type Profile struct {
	ids  []string
	defs map[string]Definition
}

// IDs returns the measure ids in declaration order.
func (p *Profile) IDs() []string {
	return p.ids
}

// Get returns the definition for a measure id.
func (p *Profile) Get(id string) (Definition, bool) {
	d, ok := p.defs[id]
	return d, ok
}

// Len returns the number of declared measures.
func (p *Profile) Len() int {
	return len(p.ids)
}

// LoadProfile reads and validates a profile JSON document. The file being
// absent is returned as an *os.PathError so entry points can distinguish a
// missing required input from a malformed one.
func LoadProfile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseProfile(f)
}

// ParseProfile decodes a profile document, preserving declaration order.
func ParseProfile(r io.Reader) (*Profile, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, pipeerr.ConfigError("profile is not valid JSON: %v", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, pipeerr.ConfigError("profile must be a JSON object keyed by measure id")
	}

	validate := validator.New()
	p := &Profile{defs: make(map[string]Definition)}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, pipeerr.ConfigError("profile is not valid JSON: %v", err)
		}
		id, ok := keyTok.(string)
		if !ok {
			return nil, pipeerr.ConfigError("profile keys must be strings")
		}

		var def Definition
		if err := dec.Decode(&def); err != nil {
			return nil, pipeerr.ConfigError("measure %q has a malformed definition: %v", id, err)
		}
		if err := validate.Struct(def); err != nil {
			return nil, pipeerr.ConfigError("measure %q failed validation: %v", id, err)
		}
		if _, dup := p.defs[id]; dup {
			return nil, pipeerr.ConfigError("measure %q is declared twice", id)
		}

		p.ids = append(p.ids, id)
		p.defs[id] = def
	}

	if _, err := dec.Token(); err != nil {
		return nil, pipeerr.ConfigError("profile is not valid JSON: %v", err)
	}
	return p, nil
}

// checkReferences verifies that every function reference in the profile
// names a registered computer. Called by Registry.Bind so unregistered
// names fail at load time, not at first invocation.
func checkReferences(p *Profile, r *Registry) error {
	for _, id := range p.ids {
		def := p.defs[id]
		if def.ValueFunc != "" && !r.hasValue(def.ValueFunc) {
			return pipeerr.ConfigError("measure %q names unregistered value function %q", id, def.ValueFunc)
		}
		if def.ScoreFunc != "" && !r.hasScore(def.ScoreFunc) {
			return pipeerr.ConfigError("measure %q names unregistered score function %q", id, def.ScoreFunc)
		}
	}
	return nil
}
