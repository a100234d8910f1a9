package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fastbreakhq/fastbreak/core/season"
)

func boolPtr(b bool) *bool { return &b }

func TestResolveStatus(t *testing.T) {
	explicit := Player{
		RegistrationComplete: boolPtr(true),
		PaymentComplete:      boolPtr(false),
	}
	st := explicit.ResolveStatus()
	assert.Equal(t, StatusExplicit, st.Kind)
	assert.True(t, st.RegistrationComplete)
	assert.False(t, st.PaymentComplete)

	derived := Player{
		Seasons: []SeasonRegistration{
			{Season: season.Spring, Year: 2024, PaymentStatus: PaymentPaid},
			{Season: season.Summer, Year: 2025, PaymentStatus: PaymentPending},
		},
	}
	st = derived.ResolveStatus()
	assert.Equal(t, StatusSeasonDerived, st.Kind)
	assert.Equal(t, season.Summer, st.Season)
	assert.Equal(t, 2025, st.Year)

	empty := Player{}
	st = empty.ResolveStatus()
	assert.Equal(t, StatusSeasonDerived, st.Kind)
	assert.Zero(t, st.Year)
}

func TestActiveAt(t *testing.T) {
	now := time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC) // Summer 2025

	tests := []struct {
		name   string
		player Player
		want   bool
	}{
		{
			name:   "current season entry",
			player: Player{Seasons: []SeasonRegistration{{Season: season.Summer, Year: 2025}}},
			want:   true,
		},
		{
			name:   "next season entry",
			player: Player{Seasons: []SeasonRegistration{{Season: season.Fall, Year: 2025}}},
			want:   true,
		},
		{
			name:   "stale entry",
			player: Player{Seasons: []SeasonRegistration{{Season: season.Spring, Year: 2025}}},
			want:   false,
		},
		{
			name:   "future year entry",
			player: Player{Seasons: []SeasonRegistration{{Season: season.Summer, Year: 2026}}},
			want:   true,
		},
		{
			name:   "legacy flags complete",
			player: Player{RegistrationComplete: boolPtr(true), PaymentComplete: boolPtr(true)},
			want:   true,
		},
		{
			name:   "legacy flags unpaid",
			player: Player{RegistrationComplete: boolPtr(true), PaymentComplete: boolPtr(false)},
			want:   false,
		},
		{
			name:   "no records",
			player: Player{},
			want:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.player.ActiveAt(now))
		})
	}
}

func TestNewPlayerValidate(t *testing.T) {
	np := NewPlayer{
		FullName:    "  Jo Hooper ",
		Gender:      "Female",
		DateOfBirth: "2014-03-09",
		Grade:       5,
	}
	assert.NoError(t, np.Validate())
	assert.Equal(t, "Jo Hooper", np.FullName)
	assert.Equal(t, time.Date(2014, time.March, 9, 0, 0, 0, 0, time.UTC), np.DOB)

	// slash layout also accepted
	np = NewPlayer{FullName: "Jo", DateOfBirth: "03/09/2014", Grade: 5}
	assert.NoError(t, np.Validate())
	assert.Equal(t, time.Date(2014, time.March, 9, 0, 0, 0, 0, time.UTC), np.DOB)

	// all violations accumulate
	bad := NewPlayer{DateOfBirth: "yesterday", Grade: 13}
	flds := bad.FieldErrors()
	keys := make(map[string]bool, len(flds))
	for _, f := range flds {
		keys[f.Field] = true
	}
	assert.True(t, keys["fullName"])
	assert.True(t, keys["grade"])
	assert.True(t, keys["dateOfBirth"])
	assert.Len(t, flds, 3)
}

func TestSeasonEntryLookups(t *testing.T) {
	p := Player{Seasons: []SeasonRegistration{
		{Season: season.Summer, Year: 2025, PaymentStatus: PaymentPending},
		{Season: season.Fall, Year: 2025, PaymentStatus: PaymentPaid, PackageType: "2", AmountPaid: 83500},
	}}

	assert.True(t, p.RegisteredFor(season.Summer, 2025))
	assert.False(t, p.PaidFor(season.Summer, 2025))
	assert.True(t, p.PaidFor(season.Fall, 2025))
	assert.False(t, p.RegisteredFor(season.Winter, 2025))

	sr, ok := p.SeasonEntry(season.Fall, 2025)
	assert.True(t, ok)
	assert.Equal(t, 83500, sr.AmountPaid)
}
