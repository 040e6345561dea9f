package domain

import (
	"fmt"
	"strings"
)

// TargetAccount is one dispensable account from the cumulative pool.
// PublishingLevel and AccessLevel are kept as text and collate ascending;
// lower sorts first and is dispensed first.
type TargetAccount struct {
	ID              int64
	Name            string
	AccountID       string
	Link            string
	Status          string
	Category        string
	Type            string
	PublishingLevel string
	AccessLevel     string
	Used            bool
}

// Renderable reports whether the account carries an id the front end can
// show. Accounts without one still consume a dispense slot.
func (a TargetAccount) Renderable() bool {
	return strings.TrimSpace(a.AccountID) != ""
}

// AccountRow is an ingestion-validated account row. Upserts match on Name.
type AccountRow struct {
	Name            string
	AccountID       string
	Link            string
	Status          string
	Category        string
	Type            string
	PublishingLevel string
	AccessLevel     string
}

func (r AccountRow) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("account name is required")
	}
	return nil
}
