package models

import (
	"encoding/json"
	"fmt"

	boostermodels "kc-mini-app-backend/internal/features/booster/models"
	usermodels "kc-mini-app-backend/internal/features/user/models"
)

// SchemaVersion is written into every persisted record.
const SchemaVersion = 1

// Snapshot is everything the store keeps for one Telegram user.
type Snapshot struct {
	Version        int                           `json:"version"`
	User           *usermodels.User              `json:"user"`
	ActiveBoosters []boostermodels.ActiveBooster `json:"active_boosters"`
	Plan           *usermodels.Plan              `json:"plan,omitempty"`
}

// Empty is the snapshot of a user that was never stored or was cleared.
func Empty() *Snapshot {
	return &Snapshot{
		Version:        SchemaVersion,
		ActiveBoosters: []boostermodels.ActiveBooster{},
	}
}

func (s *Snapshot) HasUser() bool {
	return s != nil && s.User != nil
}

// Clear drops the user, the boosters and the plan.
func (s *Snapshot) Clear() {
	s.User = nil
	s.ActiveBoosters = []boostermodels.ActiveBooster{}
	s.Plan = nil
}

// Encode serializes the snapshot with the current schema version.
func (s *Snapshot) Encode() ([]byte, error) {
	s.Version = SchemaVersion
	if s.ActiveBoosters == nil {
		s.ActiveBoosters = []boostermodels.ActiveBooster{}
	}
	return json.Marshal(s)
}

// Decode parses a persisted record. Records without a version predate the
// tag and are read as version 1; newer versions are refused.
func Decode(data []byte) (*Snapshot, error) {
	s := Empty()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	if s.Version == 0 {
		s.Version = SchemaVersion
	}
	if s.Version > SchemaVersion {
		return nil, &UnsupportedVersionError{Version: s.Version}
	}
	if s.ActiveBoosters == nil {
		s.ActiveBoosters = []boostermodels.ActiveBooster{}
	}
	return s, nil
}

// UnsupportedVersionError is returned for records written by a newer schema.
type UnsupportedVersionError struct {
	Version int
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("snapshot schema version %d is newer than supported version %d", e.Version, SchemaVersion)
}
