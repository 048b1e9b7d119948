package models

import (
	"fmt"
	"time"
)

// Type is the wire name of a booster kind.
type Type string

const (
	TypeOneTime   Type = "oneTime"
	TypeDuration  Type = "duration"
	TypePermanent Type = "permanent"
)

// Kind decides when an activated booster stops counting.
type Kind interface {
	Type() Type
	// ExpiresAt returns nil for boosters that never expire.
	ExpiresAt(activatedAt time.Time) *time.Time
	isKind()
}

// OneTime boosters expire at the activation instant.
type OneTime struct{}

func (OneTime) Type() Type { return TypeOneTime }

func (OneTime) ExpiresAt(activatedAt time.Time) *time.Time {
	return &activatedAt
}

func (OneTime) isKind() {}

// Duration boosters last for a fixed period after activation.
type Duration struct {
	Length time.Duration
}

func (Duration) Type() Type { return TypeDuration }

func (d Duration) ExpiresAt(activatedAt time.Time) *time.Time {
	t := activatedAt.Add(d.Length)
	return &t
}

func (Duration) isKind() {}

type Permanent struct{}

func (Permanent) Type() Type { return TypePermanent }

func (Permanent) ExpiresAt(time.Time) *time.Time { return nil }

func (Permanent) isKind() {}

// ParseKind rebuilds a Kind from its wire form. A duration booster needs a
// positive length; the other kinds ignore it.
func ParseKind(t Type, length time.Duration) (Kind, error) {
	switch t {
	case TypeOneTime:
		return OneTime{}, nil
	case TypePermanent:
		return Permanent{}, nil
	case TypeDuration:
		if length <= 0 {
			return nil, fmt.Errorf("duration booster needs a positive length, got %s", length)
		}
		return Duration{Length: length}, nil
	default:
		return nil, fmt.Errorf("unknown booster type %q", t)
	}
}

// LengthOf returns the duration of a Duration kind and 0 otherwise.
func LengthOf(k Kind) time.Duration {
	if d, ok := k.(Duration); ok {
		return d.Length
	}
	return 0
}
