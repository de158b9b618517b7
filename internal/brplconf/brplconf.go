// Package brplconf loads and validates the tunables every BRPL core
// component needs (spec.md §6 "Configuration surface"). Defaults mirror the
// compile-time constants the original C source ships, expressed here as a
// YAML-loadable Go struct the way the teacher's pkg/config does for its own
// framework settings.
package brplconf

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeetee1235/contiki-ng-brpl/internal/dagstate"
	"github.com/zeetee1235/contiki-ng-brpl/internal/objective"
	"github.com/zeetee1235/contiki-ng-brpl/internal/scoring"
	"github.com/zeetee1235/contiki-ng-brpl/internal/trust"
)

// Params is the full BRPL configuration surface, spec.md §6. All fields are
// fixed-point tunables in a shared scale of Scale (default 1000).
type Params struct {
	Scale uint16 `yaml:"scale"`

	QueueEWMAAlpha    uint16 `yaml:"queue_ewma_alpha"`
	BetaWindowSeconds int64  `yaml:"beta_window_seconds"`

	TrustMin        uint16 `yaml:"trust_min"`
	TrustPenaltyGamma int  `yaml:"trust_penalty_gamma"`
	TrustLambdaPenalty uint32 `yaml:"trust_lambda_penalty"`
	TrustAlpha      uint16 `yaml:"trust_alpha"`
	TrustBeta       uint16 `yaml:"trust_beta"`

	TauRank         int32  `yaml:"tau_rank"`
	KappaRank       int32  `yaml:"kappa_rank"`
	LambdaShAdv     uint32 `yaml:"lambda_sh_adv"`
	LambdaShStab    uint32 `yaml:"lambda_sh_stab"`
	MinHopRankInc   int32  `yaml:"min_hop_rank_inc"`
	StabilityWindow int64  `yaml:"stability_window_seconds"`

	QueueCapacity uint16 `yaml:"queue_capacity"`

	// LogTrustLambda is informational only: the original source carries a
	// distinct TRUST_LAMBDA constant alongside TRUST_LAMBDA_PENALTY that no
	// formula in spec.md §4 ever reads. It is loaded and saved with the rest
	// of the file but no code reads it: it is not wired into scoring and no
	// CSV record carries it (DESIGN.md).
	LogTrustLambda uint32 `yaml:"log_trust_lambda"`
}

// DefaultParams returns the spec.md §6 default table, unmodified.
func DefaultParams() Params {
	return Params{
		Scale: 1000,

		QueueEWMAAlpha:    100,
		BetaWindowSeconds: 60,

		TrustMin:           300,
		TrustPenaltyGamma:  1,
		TrustLambdaPenalty: 2000,
		TrustAlpha:         500,
		TrustBeta:          200,

		TauRank:         0,
		KappaRank:       0,
		LambdaShAdv:     500,
		LambdaShStab:    500,
		MinHopRankInc:   256,
		StabilityWindow: 120,

		QueueCapacity: 16,

		LogTrustLambda: 2000,
	}
}

// Validate enforces spec.md §7's configuration-error taxonomy: illegal
// scale, smoothing, trust, gamma or window values are never recovered from,
// they fail loud at init. QueueCapacity is not checked, since 0 is the
// legal "uncapped" setting. Every check is accumulated so callers see the
// full list of problems in one pass, the way the teacher's scenario
// validator does.
func (p Params) Validate() error {
	var errs []string

	if p.Scale == 0 {
		errs = append(errs, "scale must be > 0")
	}
	if p.QueueEWMAAlpha == 0 || p.QueueEWMAAlpha > p.Scale {
		errs = append(errs, fmt.Sprintf("queue_ewma_alpha must be in [1, %d]", p.Scale))
	}
	if p.BetaWindowSeconds < 0 {
		errs = append(errs, "beta_window_seconds must be >= 0")
	}
	if p.TrustMin > p.Scale {
		errs = append(errs, fmt.Sprintf("trust_min must be <= scale (%d)", p.Scale))
	}
	if p.TrustPenaltyGamma != 1 && p.TrustPenaltyGamma != 2 {
		errs = append(errs, "trust_penalty_gamma must be 1 or 2")
	}
	if p.TrustAlpha > p.Scale {
		errs = append(errs, fmt.Sprintf("trust_alpha must be <= scale (%d)", p.Scale))
	}
	if p.TrustBeta > p.Scale {
		errs = append(errs, fmt.Sprintf("trust_beta must be <= scale (%d)", p.Scale))
	}
	if p.StabilityWindow < 0 {
		errs = append(errs, "stability_window_seconds must be >= 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid brpl configuration: %v", errs)
	}
	return nil
}

// Load reads and parses a YAML configuration file, overlaying it onto
// DefaultParams. A missing path returns the defaults unmodified, matching
// config.Load's fall-back-to-defaults behavior. Environment variables
// referenced in the file are expanded first, same as config.Load.
func Load(path string) (Params, error) {
	p := DefaultParams()

	if path == "" {
		return p, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("failed to read brpl config file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, &p); err != nil {
		return Params{}, fmt.Errorf("failed to parse brpl config file: %w", err)
	}

	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Save writes p to path as YAML, for `brpld validate --write-defaults`-style
// workflows.
func (p Params) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal brpl config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write brpl config file: %w", err)
	}
	return nil
}

// DAGStateParams extracts the subset internal/dagstate.Refresh needs.
func (p Params) DAGStateParams() dagstate.Params {
	return dagstate.Params{
		Scale:             p.Scale,
		QueueEWMAAlpha:    p.QueueEWMAAlpha,
		BetaWindowSeconds: p.BetaWindowSeconds,
	}
}

// TrustParams extracts the subset internal/trust needs.
func (p Params) TrustParams() trust.Params {
	return trust.Params{
		Scale: p.Scale,
		Min:   p.TrustMin,

		Alpha: p.TrustAlpha,
		Beta:  p.TrustBeta,

		TauRank:         p.TauRank,
		KappaRank:       p.KappaRank,
		LambdaShAdv:     p.LambdaShAdv,
		LambdaShStab:    p.LambdaShStab,
		MinHopRankInc:   p.MinHopRankInc,
		StabilityWindow: p.StabilityWindow,
	}
}

// ScoringParams extracts the subset internal/scoring needs.
func (p Params) ScoringParams() scoring.Params {
	gamma := scoring.GammaLinear
	if p.TrustPenaltyGamma == 2 {
		gamma = scoring.GammaSquared
	}
	return scoring.Params{
		Scale:              p.Scale,
		TrustPenaltyGamma:  gamma,
		TrustLambdaPenalty: p.TrustLambdaPenalty,
		Trust:              p.TrustParams(),
	}
}

// ObjectiveParams assembles the full internal/objective.Params value from p.
func (p Params) ObjectiveParams() objective.Params {
	return objective.Params{
		Scale:             p.Scale,
		QueueEWMAAlpha:    p.QueueEWMAAlpha,
		BetaWindowSeconds: p.BetaWindowSeconds,
		Trust:             p.TrustParams(),
		Scoring:           p.ScoringParams(),
	}
}
