package jsonstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/vms003/vatsal-medical/internal/models"
	"github.com/vms003/vatsal-medical/internal/store"
)

// ImportStats counts what Import copied and what it had to skip.
type ImportStats struct {
	Users         int
	Medicines     int
	Doctors       int
	Prescriptions int
	Skipped       int
}

// Import copies doc into dst. The destination assigns fresh ids, so owner
// references are remapped. Users whose email already exists in dst are
// skipped together with everything they own.
func Import(ctx context.Context, doc *Document, dst store.Store) (ImportStats, error) {
	var stats ImportStats
	owners := make(map[int64]int64, len(doc.Users))

	for _, u := range doc.Users {
		oldID := u.ID
		u.ID = 0
		if err := dst.Users().Create(ctx, &u); err != nil {
			if errors.Is(err, store.ErrEmailTaken) {
				slog.Warn("import: user already exists, skipping", "email", u.Email)
				stats.Skipped++
				continue
			}
			return stats, fmt.Errorf("failed to import user %d: %w", oldID, err)
		}
		owners[oldID] = u.ID
		stats.Users++
	}

	for _, m := range doc.Medicines {
		owner, ok := owners[m.UserID]
		if !ok {
			stats.Skipped++
			continue
		}
		m.ID, m.UserID = 0, owner
		m.Schedules = lo.Map(m.Schedules, func(s models.Schedule, i int) models.Schedule {
			return models.Schedule{Position: i, Time: s.Time, Days: s.Days}
		})
		if err := dst.Medicines().Create(ctx, &m); err != nil {
			return stats, fmt.Errorf("failed to import medicine %q: %w", m.Name, err)
		}
		stats.Medicines++
	}

	for _, d := range doc.Doctors {
		owner, ok := owners[d.UserID]
		if !ok {
			stats.Skipped++
			continue
		}
		d.ID, d.UserID = 0, owner
		if err := dst.Doctors().Create(ctx, &d); err != nil {
			return stats, fmt.Errorf("failed to import doctor %q: %w", d.Name, err)
		}
		stats.Doctors++
	}

	for _, p := range doc.Prescriptions {
		owner, ok := owners[p.UserID]
		if !ok {
			stats.Skipped++
			continue
		}
		p.ID, p.UserID = 0, owner
		if err := dst.Prescriptions().Create(ctx, &p); err != nil {
			return stats, fmt.Errorf("failed to import prescription %q: %w", p.Filename, err)
		}
		stats.Prescriptions++
	}

	return stats, nil
}
