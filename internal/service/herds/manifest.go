package herds

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Manifest is the YAML document accepted by herd imports:
//
//	herds:
//	  - name: North pasture
//	    cows: 12
//	    sheep: 30
type Manifest struct {
	Herds []Input `yaml:"herds"`
}

// ParseManifest decodes and validates a herd manifest.
func ParseManifest(r io.Reader) ([]Input, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode herd manifest: %w", err)
	}

	for i, in := range m.Herds {
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("herd %d: %w", i+1, err)
		}
	}
	return m.Herds, nil
}
