package manipulator

import (
	"io"
	"io/ioutil"
	"regexp"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var rxPresetName = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// Presets maps a name usable in place of the actions segment to the actions it stands for, e.g.
//
//	thumbnail: 150x150_crop_q80
//	hero: w1600_fit
type Presets map[string]string

func LoadPresets(r io.Reader) (Presets, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not read presets")
	}

	presets := make(Presets)
	if err := yaml.Unmarshal(b, &presets); err != nil {
		return nil, errors.Wrapf(ErrBadTransformationRequest, "could not parse presets: %v", err)
	}

	for name, actions := range presets {
		if !rxPresetName.MatchString(name) {
			return nil, errors.Wrapf(ErrBadTransformationRequest, "invalid preset name %q", name)
		}

		if actions == "" {
			return nil, errors.Wrapf(ErrBadTransformationRequest, "preset %s has no actions", name)
		}
	}

	return presets, nil
}

// Expand returns the actions of a preset, anything else is returned as is
func (p Presets) Expand(actions string) string {
	if expanded, ok := p[actions]; ok {
		return expanded
	}

	return actions
}

func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
