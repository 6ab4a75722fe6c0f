package tuning

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds every empirically tuned constant of the turn engine. None of
// the values are load-bearing invariants; they are defaults that play well on
// 32..64 wide maps.
type Tuning struct {
	Field   FieldTuning   `yaml:"field"`
	Policy  PolicyTuning  `yaml:"policy"`
	Convert ConvertTuning `yaml:"convert"`
	Spawn   SpawnTuning   `yaml:"spawn"`
}

type FieldTuning struct {
	// PressureHalfWindow h counts agents over the wrapped window [-h, h) on
	// both axes (h=4 gives the 8x8 window).
	PressureHalfWindow   int     `yaml:"pressure_half_window"`
	CongestionMinEnemies int     `yaml:"congestion_min_enemies"`
	CongestionBonus      float64 `yaml:"congestion_bonus"`

	DiffusionPasses int `yaml:"diffusion_passes"`
	// Zero means width/8+2.
	DiffusionRadius int `yaml:"diffusion_radius"`
	// Zero means width/16+2.
	SuppressionRadius int `yaml:"suppression_radius"`
	// Zero means height/8+1.
	MaxLocalMaxima int `yaml:"max_local_maxima"`

	DefenseSentinel float64 `yaml:"defense_sentinel"`
	PredictEnemies  bool    `yaml:"predict_enemies"`
}

type PolicyTuning struct {
	MoveBias        float64 `yaml:"move_bias"`
	BlockedBaseline float64 `yaml:"blocked_baseline"`

	ReturnCargoCap  int `yaml:"return_cargo_cap"`
	ReturnCargoStep int `yaml:"return_cargo_step"`
	ReturnStepPad   int `yaml:"return_step_pad"`

	EndGameMargin          int `yaml:"end_game_margin"`
	EndGameLookaheadMargin int `yaml:"end_game_lookahead_margin"`
	EndGameFloorTurns      int `yaml:"end_game_floor_turns"`

	// Ram rule: when we field more than our share of ships, a gatherer may
	// enter a cell an enemy is predicted to move to if that enemy will carry
	// more than RamRatio times our cargo.
	RamRatio float64 `yaml:"ram_ratio"`
}

type ConvertTuning struct {
	Enabled              bool    `yaml:"enabled"`
	MaxCollectedFraction float64 `yaml:"max_collected_fraction"`
	MinHalitePerDepot    float64 `yaml:"min_halite_per_depot"`
	ShipsPerDepot        int     `yaml:"ships_per_depot"`
	// MinDistanceRatio maps map width to the minimum distance/width ratio a
	// new depot must keep from the nearest one.
	MinDistanceRatio        map[int]float64 `yaml:"min_distance_ratio"`
	DefaultMinDistanceRatio float64         `yaml:"default_min_distance_ratio"`
}

type SpawnTuning struct {
	TwoPlayerTurnCutoff     int     `yaml:"two_player_turn_cutoff"`
	MultiPlayerMaxCollected float64 `yaml:"multi_player_max_collected"`
}

func Defaults() Tuning {
	return Tuning{
		Field: FieldTuning{
			PressureHalfWindow:   4,
			CongestionMinEnemies: 2,
			CongestionBonus:      2,
			DiffusionPasses:      2,
			DefenseSentinel:      1000,
			PredictEnemies:       true,
		},
		Policy: PolicyTuning{
			MoveBias:               0.1,
			BlockedBaseline:        -500,
			ReturnCargoCap:         900,
			ReturnCargoStep:        100,
			ReturnStepPad:          3,
			EndGameMargin:          10,
			EndGameLookaheadMargin: 5,
			EndGameFloorTurns:      15,
			RamRatio:               2,
		},
		Convert: ConvertTuning{
			Enabled:              true,
			MaxCollectedFraction: 0.65,
			MinHalitePerDepot:    1000,
			ShipsPerDepot:        10,
			MinDistanceRatio: map[int]float64{
				32: 0.45,
				40: 0.40,
				48: 0.35,
				56: 0.30,
				64: 0.25,
			},
			DefaultMinDistanceRatio: 0.10,
		},
		Spawn: SpawnTuning{
			TwoPlayerTurnCutoff:     200,
			MultiPlayerMaxCollected: 0.5,
		},
	}
}

// Load reads a YAML tuning file. Keys missing from the file keep their
// default value.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	var errs []error
	if t.Field.PressureHalfWindow < 0 {
		errs = append(errs, errors.New("field.pressure_half_window must be >= 0"))
	}
	if t.Field.DiffusionPasses < 0 {
		errs = append(errs, errors.New("field.diffusion_passes must be >= 0"))
	}
	if t.Field.DiffusionRadius < 0 || t.Field.SuppressionRadius < 0 || t.Field.MaxLocalMaxima < 0 {
		errs = append(errs, errors.New("field radii and counts must be >= 0"))
	}
	if t.Policy.ReturnCargoCap <= 0 || t.Policy.ReturnCargoStep <= 0 {
		errs = append(errs, errors.New("policy.return_cargo_cap and return_cargo_step must be > 0"))
	}
	if t.Policy.EndGameFloorTurns < 0 || t.Policy.EndGameMargin < 0 || t.Policy.EndGameLookaheadMargin < 0 {
		errs = append(errs, errors.New("policy end game margins must be >= 0"))
	}
	if t.Convert.ShipsPerDepot <= 0 {
		errs = append(errs, errors.New("convert.ships_per_depot must be > 0"))
	}
	if f := t.Convert.MaxCollectedFraction; f < 0 || f > 1 {
		errs = append(errs, errors.New("convert.max_collected_fraction must be within [0,1]"))
	}
	if f := t.Spawn.MultiPlayerMaxCollected; f < 0 || f > 1 {
		errs = append(errs, errors.New("spawn.multi_player_max_collected must be within [0,1]"))
	}
	return errors.Join(errs...)
}

func (f FieldTuning) DiffusionRadiusFor(width int) int {
	if f.DiffusionRadius > 0 {
		return f.DiffusionRadius
	}
	return width/8 + 2
}

func (f FieldTuning) SuppressionRadiusFor(width int) int {
	if f.SuppressionRadius > 0 {
		return f.SuppressionRadius
	}
	return width/16 + 2
}

func (f FieldTuning) MaxLocalMaximaFor(height int) int {
	if f.MaxLocalMaxima > 0 {
		return f.MaxLocalMaxima
	}
	return height/8 + 1
}

func (c ConvertTuning) MinDistanceRatioFor(width int) float64 {
	if r, ok := c.MinDistanceRatio[width]; ok {
		return r
	}
	return c.DefaultMinDistanceRatio
}
