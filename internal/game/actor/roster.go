package actor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// rosterFile is the YAML layout of a dev-host actor roster.
type rosterFile struct {
	Actors []rosterActor `yaml:"actors"`
}

type rosterActor struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Traits      map[string]int `yaml:"traits"`
	Items       []rosterItem   `yaml:"items"`
	Controllers []string       `yaml:"controllers"`
	Tokens      []string       `yaml:"tokens"`
}

type rosterItem struct {
	Name   string `yaml:"name"`
	Icon   string `yaml:"icon"`
	Attack string `yaml:"attack"`
}

// LoadRosterFile reads a roster from path into dir. See LoadRoster.
func LoadRosterFile(path string, pools *PoolRoller, dir *Directory) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading roster %s: %w", path, err)
	}
	return LoadRoster(data, pools, dir)
}

// LoadRoster adds every actor in data to dir, gives each its items, grants
// its controllers, and places its tokens.
//
// Precondition: pools and dir must be non-nil.
// Postcondition: on error dir may hold the actors processed before the
// failing entry.
func LoadRoster(data []byte, pools *PoolRoller, dir *Directory) error {
	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing roster: %w", err)
	}
	for i, ra := range f.Actors {
		if ra.ID == "" || ra.Name == "" {
			return fmt.Errorf("roster actor %d: id and name are required", i)
		}
		a := New(ra.ID, ra.Name, ra.Traits)
		for j, ri := range ra.Items {
			if ri.Name == "" {
				return fmt.Errorf("roster actor %q item %d: name is required", ra.ID, j)
			}
			if ri.Attack != "" {
				if _, ok := pools.registry.Attack(ri.Attack); !ok {
					return fmt.Errorf("roster actor %q item %q: unknown attack %q", ra.ID, ri.Name, ri.Attack)
				}
			}
			a.Give(NewItem(ri.Name, ri.Icon, ri.Attack, pools))
		}
		if err := dir.Add(a); err != nil {
			return fmt.Errorf("roster: %w", err)
		}
		for _, user := range ra.Controllers {
			if err := dir.Grant(user, a.ID()); err != nil {
				return fmt.Errorf("roster: %w", err)
			}
		}
		for _, token := range ra.Tokens {
			if err := dir.PlaceToken(token, a.ID()); err != nil {
				return fmt.Errorf("roster: %w", err)
			}
		}
	}
	return nil
}
