package importer

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/moodytx/directory/internal/model"
)

// Dataset is a curated static list of candidates, used to seed the
// directory before a live Places import or to carry businesses the API
// does not know about. Entries without a place_id get one synthesized
// from a "sample-" prefix so the cleanup pass can find them later.
type Dataset struct {
	Businesses []model.Candidate `yaml:"businesses"`
}

// LoadDataset reads a YAML candidate dataset from path.
func LoadDataset(path string) ([]model.Candidate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: read dataset %s", path)
	}

	var ds Dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return nil, eris.Wrapf(err, "importer: parse dataset %s", path)
	}

	for i := range ds.Businesses {
		if ds.Businesses[i].PlaceID == "" {
			ds.Businesses[i].PlaceID = "sample-" + slugify(ds.Businesses[i].Name)
		}
	}
	return ds.Businesses, nil
}

func slugify(name string) string {
	out := make([]rune, 0, len(name))
	lastDash := true
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
			lastDash = false
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
			lastDash = false
		default:
			if !lastDash {
				out = append(out, '-')
				lastDash = true
			}
		}
	}
	if len(out) > 0 && out[len(out)-1] == '-' {
		out = out[:len(out)-1]
	}
	return string(out)
}
