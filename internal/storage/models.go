package storage

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// StoredProfile is a saved participant record. The generation engine never
// reads this table directly; the CLI and server load profiles here and
// pass them to the pipeline as plain records.
type StoredProfile struct {
	ID     string
	Handle string // unique short name used on the command line

	Name    string
	Role    string
	Company string
	School  string

	Interests       string // JSON array stored as text
	GoalsNextPeriod string // JSON array stored as text
	RecentWin       string
	HelpOffers      string // JSON array stored as text

	// Notes holds free-text source material, e.g. an imported resume
	// extract. Passed to the pipeline as notes context, never parsed
	// into facts here.
	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Record converts the stored row into the loosely typed shape the
// pipeline normalizer accepts.
func (p StoredProfile) Record() map[string]any {
	rec := map[string]any{}
	if p.Name != "" {
		rec["name"] = p.Name
	}
	if p.Role != "" {
		rec["role"] = p.Role
	}
	if p.Company != "" {
		rec["company"] = p.Company
	}
	if p.School != "" {
		rec["school"] = p.School
	}
	if p.RecentWin != "" {
		rec["recent_win"] = p.RecentWin
	}
	if list := decodeList(p.Interests); len(list) > 0 {
		rec["interests"] = list
	}
	if list := decodeList(p.GoalsNextPeriod); len(list) > 0 {
		rec["goals_next_period"] = list
	}
	if list := decodeList(p.HelpOffers); len(list) > 0 {
		rec["help_offers"] = list
	}
	return rec
}

func decodeList(raw string) []string {
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	return list
}

// EncodeList serializes a string list for storage in a text column.
func EncodeList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return string(b)
}
