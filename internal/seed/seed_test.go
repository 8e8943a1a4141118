package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/appointment"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/caltime"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/config"
)

func TestDefaultRulesAreValid(t *testing.T) {
	rules := DefaultRules()

	require.NoError(t, appointment.ValidateRules(rules))
	assert.Len(t, rules, 11)
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	repo := appointment.NewMemoryRepository()
	clock := caltime.FixedClock(time.Date(2026, time.October, 16, 9, 0, 0, 0, caltime.Location(caltime.DefaultTimezone)))
	svc := appointment.NewService(repo, appointment.NewLocalLocker(), clock, config.Config{SlotMinutes: 30})

	res, err := Run(ctx, repo, svc, Options{Dentists: 2, Patients: 5, Seed: 42})
	require.NoError(t, err)
	assert.Len(t, res.Dentists, 2)
	assert.Len(t, res.Patients, 5)

	dentists, err := repo.ListDentists(ctx)
	require.NoError(t, err)
	assert.Len(t, dentists, 2)

	// Monday 2026-10-19: 8 morning and 8 afternoon half-hour slots
	free, err := svc.FreeSlots(ctx, res.Dentists[0].ID, caltime.NewDate(2026, time.October, 19))
	require.NoError(t, err)
	assert.Len(t, free, 16)

	// Sunday is closed
	free, err = svc.FreeSlots(ctx, res.Dentists[0].ID, caltime.NewDate(2026, time.October, 18))
	require.NoError(t, err)
	assert.Empty(t, free)

	for _, p := range res.Patients {
		require.NotNil(t, p.Email)
		assert.NotEmpty(t, *p.Email)
	}
}
