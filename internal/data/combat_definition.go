package data

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/tilecombat/internal/game/area"
	"github.com/udisondev/tilecombat/internal/game/combat"
	"github.com/udisondev/tilecombat/internal/game/formula"
)

var (
	ErrInvalidDefinition = errors.New("invalid combat definition")
	ErrDuplicateName     = errors.New("duplicate combat definition")
)

// File is the layout of one definitions file.
//
//	combats:
//	  - name: great_fireball
//	    kind: health
//	    params: {damage_type: fire, effect: 6, distance_effect: 3, create_item: 1492}
//	    area: {rows: 3, cells: [0,1,0, 1,3,1, 0,1,0]}
//	    formula: {kind: levelmagic, mina: -1.2, minb: 0, maxa: -0.8, maxb: 0}
//	fields:
//	  - item_id: 1492
//	    damage_type: fire
//	    condition: {type: burning, ticks: 7, interval: 4s, damage: -10}
type File struct {
	Combats []*Definition `yaml:"combats"`
	Fields  []*FieldDef   `yaml:"fields"`
}

// Definition is one named combat as stored in files and the database.
type Definition struct {
	Name      string        `yaml:"name"`
	Kind      string        `yaml:"kind"`
	Params    ParamsDef     `yaml:"params"`
	Area      *AreaDef      `yaml:"area,omitempty"`
	Formula   *FormulaDef   `yaml:"formula,omitempty"`
	Callback  *CallbackDef  `yaml:"callback,omitempty"`
	Condition *ConditionDef `yaml:"condition,omitempty"`
}

// ParamsDef mirrors combat.Params. Missing effects mean none; a missing
// aggressive flag means aggressive.
type ParamsDef struct {
	DamageType            string `yaml:"damage_type,omitempty"`
	Effect                *uint8 `yaml:"effect,omitempty"`
	DistanceEffect        *uint8 `yaml:"distance_effect,omitempty"`
	BlockedByArmor        bool   `yaml:"blocked_by_armor,omitempty"`
	BlockedByShield       bool   `yaml:"blocked_by_shield,omitempty"`
	TargetCasterOrTopMost bool   `yaml:"target_caster_or_topmost,omitempty"`
	Aggressive            *bool  `yaml:"aggressive,omitempty"`
	CreateItem            uint16 `yaml:"create_item,omitempty"`
}

// AreaDef holds the north-facing primary shape and the optional
// north-west-facing diagonal shape, both row-major.
type AreaDef struct {
	Rows     int         `yaml:"rows"`
	Cells    []area.Cell `yaml:"cells"`
	ExtRows  int         `yaml:"ext_rows,omitempty"`
	ExtCells []area.Cell `yaml:"ext_cells,omitempty"`
}

// FormulaDef is an arithmetic value formula.
type FormulaDef struct {
	Kind string  `yaml:"kind"`
	MinA float64 `yaml:"mina"`
	MinB float64 `yaml:"minb"`
	MaxA float64 `yaml:"maxa"`
	MaxB float64 `yaml:"maxb"`
}

// CallbackDef names a scripted value formula.
type CallbackDef struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
}

// ConditionDef describes a periodic condition template.
type ConditionDef struct {
	Type     string        `yaml:"type"`
	Ticks    int32         `yaml:"ticks"`
	Interval time.Duration `yaml:"interval"`
	Damage   int32         `yaml:"damage"`
}

// FieldDef registers a field item that combats can create.
type FieldDef struct {
	ItemID     uint16        `yaml:"item_id"`
	DamageType string        `yaml:"damage_type"`
	Blocking   bool          `yaml:"blocking,omitempty"`
	Condition  *ConditionDef `yaml:"condition,omitempty"`
}

// ParseFile decodes and validates one definitions file.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding definitions: %w", err)
	}
	for _, def := range f.Combats {
		if err := def.Validate(); err != nil {
			return nil, err
		}
	}
	for _, fd := range f.Fields {
		if err := fd.Validate(); err != nil {
			return nil, err
		}
	}
	return &f, nil
}

// ParseDefinition decodes and validates a single definition body.
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("decoding definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// ParseField decodes and validates a single field body.
func ParseField(data []byte) (*FieldDef, error) {
	var f FieldDef
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding field: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Marshal encodes the field in the same layout ParseField reads.
func (f *FieldDef) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encoding field %d: %w", f.ItemID, err)
	}
	return out, nil
}

// Marshal encodes the definition in the same layout ParseDefinition reads.
func (d *Definition) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encoding definition %q: %w", d.Name, err)
	}
	return out, nil
}

// Validate checks everything Build would reject, without a world.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidDefinition)
	}
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w %q: %s", ErrInvalidDefinition, d.Name, fmt.Sprintf(format, args...))
	}

	kind, err := combat.ParseKind(d.Kind)
	if err != nil {
		return invalid("%v", err)
	}
	if _, err := combat.ParseDamageType(d.Params.DamageType); err != nil {
		return invalid("%v", err)
	}

	if d.Area != nil {
		if _, err := d.Area.directory(); err != nil {
			return invalid("area: %v", err)
		}
	}

	if d.Formula != nil && d.Callback != nil {
		return invalid("formula and callback are mutually exclusive")
	}
	if d.Formula != nil {
		fk, err := formula.ParseKind(d.Formula.Kind)
		if err != nil {
			return invalid("%v", err)
		}
		if fk != formula.KindLevelMagic {
			return invalid("arithmetic formula must be levelmagic, got %s", fk)
		}
	}
	if d.Callback != nil {
		fk, err := formula.ParseKind(d.Callback.Kind)
		if err != nil {
			return invalid("%v", err)
		}
		if fk == formula.KindNone {
			return invalid("callback kind must be levelmagic or skill")
		}
		if d.Callback.Name == "" {
			return invalid("callback without name")
		}
	}

	if kind == combat.KindCondition && d.Condition == nil {
		return invalid("condition combat without condition")
	}
	if d.Condition != nil {
		if err := d.Condition.validate(); err != nil {
			return invalid("%v", err)
		}
	}
	return nil
}

// Validate checks the field's damage type and condition.
func (f *FieldDef) Validate() error {
	if f.ItemID == 0 {
		return fmt.Errorf("%w: field without item_id", ErrInvalidDefinition)
	}
	if _, err := combat.ParseDamageType(f.DamageType); err != nil {
		return fmt.Errorf("%w: field %d: %w", ErrInvalidDefinition, f.ItemID, err)
	}
	if f.Condition != nil {
		if err := f.Condition.validate(); err != nil {
			return fmt.Errorf("%w: field %d: %w", ErrInvalidDefinition, f.ItemID, err)
		}
	}
	return nil
}

func (c *ConditionDef) validate() error {
	if c.Type == "" {
		return errors.New("condition without type")
	}
	if c.Ticks < 0 {
		return fmt.Errorf("negative condition ticks %d", c.Ticks)
	}
	if c.Interval < 0 {
		return fmt.Errorf("negative condition interval %s", c.Interval)
	}
	return nil
}

func (a *AreaDef) directory() (*area.Directory, error) {
	d := area.NewDirectory()
	if err := d.SetupPrimary(a.Cells, a.Rows); err != nil {
		return nil, err
	}
	if err := d.SetupSecondary(a.ExtCells, a.ExtRows); err != nil {
		return nil, fmt.Errorf("diagonal shape: %w", err)
	}
	return d, nil
}
