package demo

import (
	"context"
	"fmt"

	"github.com/roach88/arec/internal/activerecord"
)

// Report is the outcome of Run.
type Report struct {
	SavedID int64    `json:"saved_id"`
	ByID    string   `json:"by_id"`
	ByName  []string `json:"by_name"`
	All     []string `json:"all"`
}

// Run saves one person, then reloads it by id, by name and as part of the
// full table. The demo tables must exist.
func Run(ctx context.Context, db *activerecord.DB) (*Report, error) {
	p := &Person{Name: "First name", Surname: "Last name"}
	if err := p.Save(ctx, db); err != nil {
		return nil, fmt.Errorf("save person: %w", err)
	}
	id, _ := p.ID()
	db.Logger().Info("saved person", "id", id)

	report := &Report{SavedID: id, ByName: []string{}, All: []string{}}

	found, ok, err := activerecord.FindByID[Person](ctx, db, id)
	if err != nil {
		return nil, fmt.Errorf("find person by id: %w", err)
	}
	if ok {
		report.ByID = found.String()
	}

	byName, err := activerecord.FindAllByColumn[Person](ctx, db, "name", p.Name)
	if err != nil {
		return nil, fmt.Errorf("find person by name: %w", err)
	}
	for _, e := range byName {
		report.ByName = append(report.ByName, e.String())
	}

	all, err := activerecord.FindAll[Person](ctx, db)
	if err != nil {
		return nil, fmt.Errorf("find all persons: %w", err)
	}
	for _, e := range all {
		report.All = append(report.All, e.String())
	}

	return report, nil
}
