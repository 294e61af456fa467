// Package catalog holds the static unit and enemy definitions the
// engine resolves instance ids against. Definitions are loaded from
// YAML content files at startup and are immutable afterwards.
package catalog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/greyhaven/thornwall/internal/game/ability"
	"github.com/greyhaven/thornwall/internal/game/element"
)

// UnitDef is the static definition of a recruitable unit.
type UnitDef struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// Armor is the damage the unit absorbs per wound.
	Armor int `yaml:"armor"`
	// Resistances lists the elements the unit resists.
	Resistances []element.Element `yaml:"resistances"`
}

// Resists reports whether the unit resists attacks of the given
// element. Cold-fire is resisted only by a unit that resists both fire
// and ice (or carries an explicit cold-fire resistance).
func (d *UnitDef) Resists(e element.Element) bool {
	if containsElement(d.Resistances, e) {
		return true
	}
	if e == element.ColdFire {
		return containsElement(d.Resistances, element.Fire) &&
			containsElement(d.Resistances, element.Ice)
	}
	return false
}

// AttackDef is one sub-attack an enemy performs each round.
type AttackDef struct {
	// Damage is the attack's base damage before any ability modifier.
	Damage int `yaml:"damage"`
	// Element is the attack's printed element.
	Element element.Element `yaml:"element"`
}

// EnemyDef is the static definition of an enemy.
type EnemyDef struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// Armor is the enemy's defense value (used by the block/attack
	// phases outside this engine).
	Armor int `yaml:"armor"`
	// Attacks lists the enemy's sub-attacks. Every enemy has at least one.
	Attacks []AttackDef `yaml:"attacks"`
	// Abilities lists the enemy's printed abilities.
	Abilities []ability.Ability `yaml:"abilities"`
}

// Registry holds all known definitions keyed by id.
type Registry struct {
	units   map[string]*UnitDef
	enemies map[string]*EnemyDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		units:   make(map[string]*UnitDef),
		enemies: make(map[string]*EnemyDef),
	}
}

// RegisterUnit adds def to the registry.
//
// Precondition: def must not be nil.
// Postcondition: Returns an error if the definition violates an
// invariant (empty id, armor < 1) or duplicates an existing id.
func (r *Registry) RegisterUnit(def *UnitDef) error {
	if def == nil || def.ID == "" {
		return fmt.Errorf("unit definition must have an id")
	}
	if def.Armor < 1 {
		return fmt.Errorf("unit %q: armor must be >= 1, got %d", def.ID, def.Armor)
	}
	if _, exists := r.units[def.ID]; exists {
		return fmt.Errorf("duplicate unit definition %q", def.ID)
	}
	r.units[def.ID] = def
	return nil
}

// RegisterEnemy adds def to the registry.
//
// Precondition: def must not be nil.
// Postcondition: Returns an error if the definition violates an
// invariant (empty id, no attacks, negative damage) or duplicates an
// existing id.
func (r *Registry) RegisterEnemy(def *EnemyDef) error {
	if def == nil || def.ID == "" {
		return fmt.Errorf("enemy definition must have an id")
	}
	if len(def.Attacks) == 0 {
		return fmt.Errorf("enemy %q: must have at least one attack", def.ID)
	}
	for i, atk := range def.Attacks {
		if atk.Damage < 0 {
			return fmt.Errorf("enemy %q: attack %d damage must be >= 0, got %d", def.ID, i, atk.Damage)
		}
	}
	if _, exists := r.enemies[def.ID]; exists {
		return fmt.Errorf("duplicate enemy definition %q", def.ID)
	}
	r.enemies[def.ID] = def
	return nil
}

// Unit returns the UnitDef for id, or (nil, false) if not found.
func (r *Registry) Unit(id string) (*UnitDef, bool) {
	d, ok := r.units[id]
	return d, ok
}

// Enemy returns the EnemyDef for id, or (nil, false) if not found.
func (r *Registry) Enemy(id string) (*EnemyDef, bool) {
	d, ok := r.enemies[id]
	return d, ok
}

// UnitCount returns the number of registered unit definitions.
func (r *Registry) UnitCount() int { return len(r.units) }

// EnemyCount returns the number of registered enemy definitions.
func (r *Registry) EnemyCount() int { return len(r.enemies) }

// LoadUnits reads every *.yaml file in dir, parses each as a UnitDef,
// and registers it.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns an error if any file fails to parse or any
// definition fails registration.
func (r *Registry) LoadUnits(dir string) error {
	return loadDir(dir, func(data []byte, path string) error {
		var def UnitDef
		if err := decodeStrict(data, &def); err != nil {
			return fmt.Errorf("parsing %q: %w", path, err)
		}
		return r.RegisterUnit(&def)
	})
}

// LoadEnemies reads every *.yaml file in dir, parses each as an
// EnemyDef, and registers it.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns an error if any file fails to parse or any
// definition fails registration.
func (r *Registry) LoadEnemies(dir string) error {
	return loadDir(dir, func(data []byte, path string) error {
		var def EnemyDef
		if err := decodeStrict(data, &def); err != nil {
			return fmt.Errorf("parsing %q: %w", path, err)
		}
		return r.RegisterEnemy(&def)
	})
}

func loadDir(dir string, parse func(data []byte, path string) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading definition dir %q: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		if err := parse(data, path); err != nil {
			return err
		}
	}
	return nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

func containsElement(elems []element.Element, e element.Element) bool {
	for _, x := range elems {
		if x == e {
			return true
		}
	}
	return false
}
