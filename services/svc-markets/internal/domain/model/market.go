package model

import (
	"strings"
	"time"
)

// MarketID is the store-assigned identifier, rendered as a 24 character hex string.
type MarketID string

func ParseMarketID(s string) (MarketID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidMarketID
	}

	return MarketID(s), nil
}

func (id MarketID) String() string {
	return string(id)
}

func (id MarketID) IsZero() bool {
	return id == ""
}

type Market struct {
	ID               MarketID
	LegacyIdentifier int
	Longitude        int64
	Latitude         int64
	SetCens          int64
	Area             int64
	DistrictCode     int
	District         string
	TownCode         int
	Town             string
	FirstZone        string
	SecondZone       string
	Name             string
	RegistryCode     string
	PublicArea       string
	Number           *string
	Neighborhood     string
	Reference        *string
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

// MergeWith returns a new Market holding the identity of m (ID, RegistryCode,
// CreatedAt, UpdatedAt) and every other field from payload. Absent optional
// fields in payload are absent in the result.
func (m *Market) MergeWith(payload Market) *Market {
	merged := payload.Clone()

	merged.ID = m.ID
	merged.RegistryCode = m.RegistryCode
	merged.CreatedAt = m.CreatedAt
	merged.UpdatedAt = cloneTime(m.UpdatedAt)

	return merged
}

// Clone returns a deep copy; pointer fields are never shared.
func (m Market) Clone() *Market {
	clone := m

	clone.Number = cloneString(m.Number)
	clone.Reference = cloneString(m.Reference)
	clone.UpdatedAt = cloneTime(m.UpdatedAt)

	return &clone
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}

	v := *s

	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	v := *t

	return &v
}
