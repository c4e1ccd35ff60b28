package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Per-source override files are decoded with yaml.v3 rather than viper:
// their maps are keyed by title-cased strings like "True Grit (2010)", and
// viper lowercases map keys on the way in.

// BoxOfficeOverrides holds corpus-level filters for scraped gross charts.
type BoxOfficeOverrides struct {
	MinOpeningTheaters int               `yaml:"min_opening_theaters"`
	SkipTitles         []string          `yaml:"skip_titles"`
	TitleChanges       map[string]string `yaml:"title_changes"`
}

// WikipediaOverrides holds explicit article-title assignments keyed by
// "Title (Year)".
type WikipediaOverrides struct {
	TitleOverride map[string]string `yaml:"title_override"`
}

// TomatoesOverrides holds the API key and explicit catalog-id assignments
// keyed by "Title (Year)".
type TomatoesOverrides struct {
	APIKey     string            `yaml:"api_key"`
	IDOverride map[string]string `yaml:"id_override"`
}

// LoadBoxOfficeOverrides reads the box-office override file. A missing file
// yields an empty set of overrides, not an error.
func LoadBoxOfficeOverrides(path string) (BoxOfficeOverrides, error) {
	var out BoxOfficeOverrides
	err := loadOverrideFile(path, &out)
	return out, err
}

// LoadWikipediaOverrides reads the Wikipedia override file. A missing file
// yields an empty set of overrides, not an error.
func LoadWikipediaOverrides(path string) (WikipediaOverrides, error) {
	var out WikipediaOverrides
	err := loadOverrideFile(path, &out)
	return out, err
}

// LoadTomatoesOverrides reads the critic-catalog override file. A missing
// file yields an empty set of overrides, not an error.
func LoadTomatoesOverrides(path string) (TomatoesOverrides, error) {
	var out TomatoesOverrides
	err := loadOverrideFile(path, &out)
	return out, err
}

func loadOverrideFile(path string, out any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return eris.Wrapf(err, "config: read override file %s", path)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return eris.Wrapf(err, "config: parse override file %s", path)
	}
	return nil
}
