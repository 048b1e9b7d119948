package models

import "strings"

// Profile selects the statistical shape of the generated values.
type Profile string

const (
	ProfileRandom  Profile = "random"
	ProfileMEV     Profile = "mev"
	ProfileScalper Profile = "scalper"
)

// ParseProfile falls back to random for anything it does not recognise.
func ParseProfile(s string) Profile {
	switch Profile(strings.ToLower(strings.TrimSpace(s))) {
	case ProfileMEV:
		return ProfileMEV
	case ProfileScalper:
		return ProfileScalper
	default:
		return ProfileRandom
	}
}

// DataPoint is one tick: epoch millis and the multiplier-adjusted value,
// which is also the balance delta of that tick.
type DataPoint struct {
	Timestamp int64   `json:"timestamp" example:"1717171717000"`
	Value     float64 `json:"value" example:"0.0042"`
}

type RandomParams struct {
	Min float64
	Max float64
}

type MEVParams struct {
	BaseMin     float64
	BaseMax     float64
	SpikeChance float64
	SpikeMin    float64
	SpikeMax    float64
}

type ScalperParams struct {
	BaseMin           float64
	BaseMax           float64
	TrendStrength     float64
	TrendChangeChance float64
	MinValue          float64
	MaxValue          float64
}

type Params struct {
	Random  RandomParams
	MEV     MEVParams
	Scalper ScalperParams
}

func DefaultRandomParams() RandomParams {
	return RandomParams{Min: 0, Max: 1}
}

func DefaultMEVParams() MEVParams {
	return MEVParams{
		BaseMin:     1,
		BaseMax:     50,
		SpikeChance: 0.1,
		SpikeMin:    10,
		SpikeMax:    50,
	}
}

func DefaultScalperParams() ScalperParams {
	return ScalperParams{
		BaseMin:           -0.02,
		BaseMax:           0.08,
		TrendStrength:     0.03,
		TrendChangeChance: 0.1,
		MinValue:          -0.1,
		MaxValue:          0.2,
	}
}

func DefaultParams() Params {
	return Params{
		Random:  DefaultRandomParams(),
		MEV:     DefaultMEVParams(),
		Scalper: DefaultScalperParams(),
	}
}

// SimulationResponse is returned by GET /bot-data
type SimulationResponse struct {
	Type       Profile     `json:"type" example:"mev" enums:"random,mev,scalper"`
	Points     []DataPoint `json:"points"`
	Balance    *float64    `json:"balance,omitempty" example:"12.75"`
	Multiplier float64     `json:"multiplier" example:"0.25"`
}

// WindowResponse is returned by GET /bot-data/window
type WindowResponse struct {
	Points []DataPoint `json:"points"`
	Size   int         `json:"size" example:"100"`
}
