package silence

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// silences shorter than this are natural speech pauses and never trimmed
	IdentityThreshold = 0.5

	// absolute ceiling for any rescaled silence, whatever MaxDuration says
	CeilingSeconds = 10.0

	DefaultMinDuration = 0.5
	DefaultMaxDuration = 20.0
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RescaleConfig bounds the easing curve. MinDuration is both the curve's zero
// point and the output floor; MaxDuration is where the curve tops out.
type RescaleConfig struct {
	MinDuration float64 `validate:"gte=0.5"`
	MaxDuration float64 `validate:"gtfield=MinDuration"`
}

func DefaultRescaleConfig() RescaleConfig {
	return RescaleConfig{
		MinDuration: DefaultMinDuration,
		MaxDuration: DefaultMaxDuration,
	}
}

// NewRescaleConfig returns a validated config.
func NewRescaleConfig(minDuration, maxDuration float64) (RescaleConfig, error) {
	cfg := RescaleConfig{MinDuration: minDuration, MaxDuration: maxDuration}
	if err := cfg.Validate(); err != nil {
		return RescaleConfig{}, err
	}
	return cfg, nil
}

// Validate rejects MinDuration < 0.5 and MaxDuration <= MinDuration.
func (c RescaleConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "gte":
			msgs = append(msgs, fmt.Sprintf("min duration must be >= %s, got %v", fe.Param(), fe.Value()))
		case "gtfield":
			msgs = append(msgs, fmt.Sprintf("max duration must exceed min duration %g, got %v", c.MinDuration, fe.Value()))
		default:
			msgs = append(msgs, fe.Error())
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// Ease is the symmetric quadratic ease-in/ease-out curve. It maps [0,1] onto
// [0,1] with zero slope at both ends.
func Ease(x float64) float64 {
	if x < 0.5 {
		return 2 * x * x
	}
	return 1 - math.Pow(-2*x+2, 2)/2
}

// RescaledDuration returns the target length of a silence lasting duration
// seconds. Durations under IdentityThreshold, or already at or under the
// configured floor, are returned unchanged. The result saturates at
// min(CeilingSeconds, span/2+MinDuration).
func (c RescaleConfig) RescaledDuration(duration float64) float64 {
	if duration < IdentityThreshold || duration <= c.MinDuration {
		return duration
	}

	span := c.MaxDuration - c.MinDuration
	x := math.Max(duration-c.MinDuration, 0) / span
	// past the curve's domain the quadratic turns back down
	if x > 1 {
		x = 1
	}

	return math.Min(CeilingSeconds, Ease(x)*span/2+c.MinDuration)
}

// Rescale shrinks iv around its midpoint to the duration chosen by the
// easing curve.
func Rescale(iv Interval, cfg RescaleConfig) (Interval, error) {
	if err := cfg.Validate(); err != nil {
		return Interval{}, err
	}
	return rescale(iv, cfg)
}

func rescale(iv Interval, cfg RescaleConfig) (Interval, error) {
	if iv.Duration < IdentityThreshold {
		return iv, nil
	}

	rescaled := cfg.RescaledDuration(iv.Duration)
	if rescaled > iv.Duration+epsilon {
		return Interval{}, fmt.Errorf(
			"%w: %s rescaled to %.6fs", ErrInvariant, iv, rescaled,
		)
	}

	delta := (iv.Duration - rescaled) / 2
	out := Interval{
		Start:    iv.Start + delta,
		Duration: rescaled,
		End:      iv.End - delta,
	}
	if out.Start > out.End+epsilon {
		return Interval{}, fmt.Errorf(
			"%w: %s rescaled to inverted %s", ErrInvariant, iv, out,
		)
	}

	return out, nil
}

// RescaleAll validates cfg once, then rescales every interval in order.
// The input slice is left untouched.
func RescaleAll(intervals []Interval, cfg RescaleConfig, hook Hook) ([]Interval, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	out := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		r, err := rescale(iv, cfg)
		if err != nil {
			return nil, err
		}
		hook.emit(Event{Kind: EventRescaled, Before: iv, After: r})
		out = append(out, r)
	}

	return out, nil
}
