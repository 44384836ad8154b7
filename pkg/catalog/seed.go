package catalog

import (
	"embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed/pools.yaml
var seedFS embed.FS

// SeedPool is one entry of a seed file
type SeedPool struct {
	Name         string         `yaml:"name"`
	Latitude     *float64       `yaml:"latitude"`
	Longitude    *float64       `yaml:"longitude"`
	Description  *string        `yaml:"description"`
	EntryFee     *int           `yaml:"entry_fee"`
	OpeningHours *string        `yaml:"opening_hours"`
	Website      *string        `yaml:"website"`
	Facilities   *FacilityInput `yaml:"facilities"`
}

type seedFile struct {
	Pools []SeedPool `yaml:"pools"`
}

// Request converts the seed entry into a create request so it passes the same validation
func (s SeedPool) Request() *CreatePoolRequest {
	return &CreatePoolRequest{
		Name:         s.Name,
		Latitude:     s.Latitude,
		Longitude:    s.Longitude,
		Description:  s.Description,
		EntryFee:     s.EntryFee,
		OpeningHours: s.OpeningHours,
		Website:      s.Website,
		Facilities:   s.Facilities,
	}
}

// DefaultSeed returns the bundled seed pools
func DefaultSeed() ([]SeedPool, error) {
	f, err := seedFS.Open("seed/pools.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to open bundled seed: %w", err)
	}
	defer f.Close()
	return ParseSeed(f)
}

// LoadSeedFile reads seed pools from a YAML file on disk
func LoadSeedFile(path string) ([]SeedPool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return ParseSeed(f)
}

// ParseSeed decodes a YAML document of the form {pools: [...]}
func ParseSeed(r io.Reader) ([]SeedPool, error) {
	var doc seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	return doc.Pools, nil
}
