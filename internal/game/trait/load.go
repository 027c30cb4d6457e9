package trait

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/cod/internal/game/dice"
)

//go:embed data/traits.yaml
var defaultTables []byte

type tableEntry struct {
	Key    string `yaml:"key"`
	Name   string `yaml:"name"`
	Header bool   `yaml:"header"`
}

// tablesFile is the on-disk layout. Ordered tables are YAML sequences so
// declaration order survives decoding; lookup tables are plain mappings.
type tablesFile struct {
	Locale       string            `yaml:"locale"`
	Initiative   string            `yaml:"initiative"`
	Groups       []tableEntry      `yaml:"groups"`
	Attributes   []tableEntry      `yaml:"attributes"`
	Skills       []tableEntry      `yaml:"skills"`
	GroupMapping map[string]string `yaml:"group_mapping"`
	Attacks      []tableEntry      `yaml:"attacks"`
	AttackPools  map[string]string `yaml:"attack_pools"`
	Splats       []tableEntry      `yaml:"splats"`
	Merits       []tableEntry      `yaml:"merits"`
}

// DefaultRegistry builds the Registry from the embedded tables.
//
// Postcondition: Returns a valid Registry; panics if the embedded tables are defective.
func DefaultRegistry() *Registry {
	r, err := Load(defaultTables)
	if err != nil {
		panic(fmt.Sprintf("building default trait registry: %v", err))
	}
	return r
}

// LoadFile reads and validates trait tables from a YAML file.
//
// Precondition: path must be a readable file.
// Postcondition: Returns a valid Registry or a non-nil error.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	r, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading trait tables %s: %w", path, err)
	}
	return r, nil
}

// Load parses and validates trait tables. Every violation is reported, not
// just the first.
//
// Postcondition: Returns a Registry whose lookups cannot fail for declared
// keys, or an error wrapping ErrConfiguration.
func Load(data []byte) (*Registry, error) {
	var f tablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parsing tables: %v", ErrConfiguration, err)
	}

	b := builder{
		reg: &Registry{
			locale:    f.Locale,
			traits:    make(map[string]Definition),
			attackIdx: make(map[string]int),
		},
	}
	b.header(f)
	b.groupTable(f.Groups)
	b.traitTable(KindAttribute, f.Attributes, f.GroupMapping)
	b.traitTable(KindSkill, f.Skills, f.GroupMapping)
	b.staleMappings(f.GroupMapping, f.Attributes, f.Skills)
	b.attackTable(f.Attacks, f.AttackPools)
	b.reg.splats = b.splatTable(f.Splats)
	b.reg.merits = b.meritTable(f.Merits)

	if len(b.errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(b.errs, "; "))
	}
	return b.reg, nil
}

type builder struct {
	reg  *Registry
	errs []string
}

func (b *builder) fail(format string, args ...any) {
	b.errs = append(b.errs, fmt.Sprintf(format, args...))
}

func (b *builder) header(f tablesFile) {
	if strings.TrimSpace(f.Locale) == "" {
		b.fail("locale must not be empty")
	}
	ini, err := dice.ParseInitiative(f.Initiative)
	if err != nil {
		b.fail("initiative: %v", err)
		return
	}
	b.reg.initiative = ini
}

func (b *builder) groupTable(entries []tableEntry) {
	valid := ValidGroups()
	seen := make(map[GroupKey]bool)
	for _, e := range entries {
		g := GroupKey(e.Key)
		switch {
		case !valid[g]:
			b.fail("groups: %q is not one of [mental, physical, social]", e.Key)
			continue
		case seen[g]:
			b.fail("groups: duplicate key %q", e.Key)
			continue
		case e.Name == "":
			b.fail("groups: %q has no display name", e.Key)
		}
		seen[g] = true
		b.reg.groups = append(b.reg.groups, Group{Key: g, DisplayName: e.Name})
	}
	for _, g := range []GroupKey{GroupMental, GroupPhysical, GroupSocial} {
		if !seen[g] {
			b.fail("groups: %q is not declared", g)
		}
	}
}

func (b *builder) traitTable(kind Kind, entries []tableEntry, mapping map[string]string) {
	valid := ValidGroups()
	for _, e := range entries {
		if e.Key == "" {
			b.fail("%ss: entry with empty key", kind)
			continue
		}
		if prev, dup := b.reg.traits[e.Key]; dup {
			b.fail("%ss: key %q already declared as %s", kind, e.Key, prev.Kind)
			continue
		}
		if e.Name == "" {
			b.fail("%ss: %q has no display name", kind, e.Key)
		}
		group, mapped := mapping[e.Key]
		if !mapped {
			b.fail("group_mapping: %s %q has no group", kind, e.Key)
			continue
		}
		if !valid[GroupKey(group)] {
			b.fail("group_mapping: %s %q maps to unknown group %q", kind, e.Key, group)
			continue
		}
		d := Definition{Key: e.Key, DisplayName: e.Name, Group: GroupKey(group), Kind: kind}
		b.reg.traits[e.Key] = d
		if kind == KindAttribute {
			b.reg.attributes = append(b.reg.attributes, d)
		} else {
			b.reg.skills = append(b.reg.skills, d)
		}
	}
}

func (b *builder) staleMappings(mapping map[string]string, attributes, skills []tableEntry) {
	for _, key := range sortedKeys(mapping) {
		if !hasEntry(attributes, key) && !hasEntry(skills, key) {
			b.fail("group_mapping: %q is not a declared attribute or skill", key)
		}
	}
}

func (b *builder) attackTable(entries []tableEntry, pools map[string]string) {
	for _, e := range entries {
		if e.Key == "" {
			b.fail("attacks: entry with empty key")
			continue
		}
		if _, dup := b.reg.attackIdx[e.Key]; dup {
			b.fail("attacks: duplicate key %q", e.Key)
			continue
		}
		raw, ok := pools[e.Key]
		if !ok {
			b.fail("attack_pools: attack %q has no pool formula", e.Key)
			continue
		}
		f, err := ParsePoolFormula(raw)
		if err != nil {
			b.fail("attack_pools: %q: %v", e.Key, err)
			continue
		}
		if d, ok := b.reg.traits[f.Attribute]; !ok || d.Kind != KindAttribute {
			b.fail("attack_pools: %q references undefined attribute %q", e.Key, f.Attribute)
			continue
		}
		if d, ok := b.reg.traits[f.Skill]; !ok || d.Kind != KindSkill {
			b.fail("attack_pools: %q references undefined skill %q", e.Key, f.Skill)
			continue
		}
		b.reg.attackIdx[e.Key] = len(b.reg.attacks)
		b.reg.attacks = append(b.reg.attacks, AttackCategory{Key: e.Key, DisplayName: e.Name, Pool: f})
	}
	for _, key := range sortedKeys(pools) {
		if !hasEntry(entries, key) {
			b.fail("attack_pools: %q is not a declared attack", key)
		}
	}
}

func (b *builder) splatTable(entries []tableEntry) []Splat {
	seen := make(map[string]bool)
	out := make([]Splat, 0, len(entries))
	for _, e := range entries {
		if e.Key == "" || seen[e.Key] {
			b.fail("splats: empty or duplicate key %q", e.Key)
			continue
		}
		seen[e.Key] = true
		out = append(out, Splat{Key: e.Key, DisplayName: e.Name})
	}
	return out
}

func (b *builder) meritTable(entries []tableEntry) []Merit {
	seen := make(map[string]bool)
	out := make([]Merit, 0, len(entries))
	for _, e := range entries {
		if e.Key == "" || seen[e.Key] {
			b.fail("merits: empty or duplicate key %q", e.Key)
			continue
		}
		seen[e.Key] = true
		out = append(out, Merit{Key: e.Key, DisplayName: e.Name, Header: e.Header})
	}
	return out
}

func hasEntry(entries []tableEntry, key string) bool {
	for _, e := range entries {
		if e.Key == key {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
