package launch

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// StoredConfiguration is the on-disk form of a configuration.
type StoredConfiguration struct {
	Name       string         `yaml:"name"`
	Type       string         `yaml:"type"`
	Attributes map[string]any `yaml:"attributes,omitempty"`
}

type storeFile struct {
	Configurations []StoredConfiguration `yaml:"configurations"`
}

// Store holds named launch configurations loaded from YAML.
type Store struct {
	configs map[string]Configuration
}

func NewStore() *Store {
	return &Store{configs: map[string]Configuration{}}
}

// LoadStore reads a YAML file of the form
//
//	configurations:
//	  - name: app
//	    type: java.application
//	    attributes:
//	      main_type: com.example.Main
func LoadStore(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read launch configurations: %w", err)
	}
	return ParseStore(data)
}

func ParseStore(data []byte) (*Store, error) {
	var file storeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse launch configurations: %w", err)
	}
	s := NewStore()
	for i, sc := range file.Configurations {
		if sc.Name == "" {
			return nil, fmt.Errorf("configuration %d: name required", i)
		}
		if sc.Type == "" {
			return nil, fmt.Errorf("configuration %q: type required", sc.Name)
		}
		if _, dup := s.configs[sc.Name]; dup {
			return nil, fmt.Errorf("configuration %q defined twice", sc.Name)
		}
		s.configs[sc.Name] = NewConfiguration(sc.Name, sc.Type, sc.Attributes)
	}
	return s, nil
}

// Get returns a configuration by name.
func (s *Store) Get(name string) (Configuration, error) {
	cfg, ok := s.configs[name]
	if !ok {
		return Configuration{}, fmt.Errorf("launch configuration %q not found", name)
	}
	return cfg, nil
}

// Names returns the configuration names in sorted order.
func (s *Store) Names() []string {
	out := make([]string, 0, len(s.configs))
	for name := range s.configs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Save writes the configurations to path.
func (s *Store) Save(path string) error {
	file := storeFile{}
	for _, name := range s.Names() {
		cfg := s.configs[name]
		file.Configurations = append(file.Configurations, StoredConfiguration{
			Name:       cfg.Name(),
			Type:       cfg.TypeID(),
			Attributes: cfg.Attributes(),
		})
	}
	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshal launch configurations: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
