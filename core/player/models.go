package player

import (
	"time"

	"github.com/fastbreakhq/fastbreak/core"
	"github.com/fastbreakhq/fastbreak/core/season"
)

// Payment statuses of a season registration.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

// SeasonRegistration scopes a player's enrollment (and its payment) to one
// (season, year) pair. The list on a Player is append-only; one entry is
// added per enrollment cycle.
type SeasonRegistration struct {
	Season        season.Season `json:"season"`
	Year          int           `json:"year"`
	PaymentStatus string        `json:"paymentStatus"`
	PackageType   string        `json:"packageType,omitempty"`
	AmountPaid    int           `json:"amountPaid,omitempty"` // cents
}

// Player is a child enrolled (or being enrolled) in the camp.
type Player struct {
	ID             string               `json:"id"`
	GuardianID     string               `json:"guardianId"`
	FullName       string               `json:"fullName"`
	Gender         string               `json:"gender,omitempty"`
	DateOfBirth    time.Time            `json:"dateOfBirth"`
	School         string               `json:"school,omitempty"`
	Grade          int                  `json:"grade"`
	HealthConcerns string               `json:"healthConcerns,omitempty"`
	AAUNumber      string               `json:"aauNumber,omitempty"`
	Seasons        []SeasonRegistration `json:"seasons,omitempty"`

	// Legacy flags kept from older records; when absent, eligibility is
	// derived from the season entries instead.
	RegistrationComplete *bool `json:"registrationComplete,omitempty"`
	PaymentComplete      *bool `json:"paymentComplete,omitempty"`

	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
}

// StatusKind tags how a player's enrollment status is determined.
type StatusKind int

const (
	// StatusExplicit means the legacy registration/payment flags are present.
	StatusExplicit StatusKind = iota
	// StatusSeasonDerived means status comes from the season entries.
	StatusSeasonDerived
)

// Status is the resolved enrollment status of a player: either the legacy
// explicit flags or the most recent season entry.
type Status struct {
	Kind                 StatusKind
	RegistrationComplete bool
	PaymentComplete      bool
	Season               season.Season
	Year                 int
}

// ResolveStatus collapses the two historical record shapes into one value.
// Records carry either explicit completion flags or season entries; callers
// switch on Kind instead of probing optional fields.
func (p *Player) ResolveStatus() Status {
	if p.RegistrationComplete != nil || p.PaymentComplete != nil {
		st := Status{Kind: StatusExplicit}
		if p.RegistrationComplete != nil {
			st.RegistrationComplete = *p.RegistrationComplete
		}
		if p.PaymentComplete != nil {
			st.PaymentComplete = *p.PaymentComplete
		}
		return st
	}
	st := Status{Kind: StatusSeasonDerived}
	if n := len(p.Seasons); n > 0 {
		last := p.Seasons[n-1]
		st.Season = last.Season
		st.Year = last.Year
	}
	return st
}

// ActiveAt reports whether the player is covered for the enrollment window
// containing t and needs no fresh registration.
func (p *Player) ActiveAt(t time.Time) bool {
	st := p.ResolveStatus()
	if st.Kind == StatusExplicit {
		return st.RegistrationComplete && st.PaymentComplete
	}
	for _, sr := range p.Seasons {
		if season.IsActive(sr.Season, sr.Year, t) {
			return true
		}
	}
	return false
}

// SeasonEntry returns the registration entry for the given pair, if any.
func (p *Player) SeasonEntry(s season.Season, year int) (SeasonRegistration, bool) {
	for _, sr := range p.Seasons {
		if sr.Season == s && sr.Year == year {
			return sr, true
		}
	}
	return SeasonRegistration{}, false
}

// RegisteredFor reports whether the player has any entry for the pair.
func (p *Player) RegisteredFor(s season.Season, year int) bool {
	_, ok := p.SeasonEntry(s, year)
	return ok
}

// PaidFor reports whether the player's entry for the pair is paid.
func (p *Player) PaidFor(s season.Season, year int) bool {
	sr, ok := p.SeasonEntry(s, year)
	return ok && sr.PaymentStatus == PaymentPaid
}

// dateOfBirth layouts accepted from registration forms.
var dobLayouts = []string{"2006-01-02", "01/02/2006"}

// NewPlayer contains information needed to enroll a player.
type NewPlayer struct {
	FullName       string `json:"fullName" validate:"required"`
	Gender         string `json:"gender" validate:"omitempty,oneof=Male Female"`
	DateOfBirth    string `json:"dateOfBirth" validate:"required"`
	School         string `json:"school"`
	Grade          int    `json:"grade" validate:"required,min=1,max=12"`
	HealthConcerns string `json:"healthConcerns"`
	AAUNumber      string `json:"aauNumber"`

	// DOB is populated by Validate.
	DOB time.Time `json:"-"`
}

// Validate cleans the input, accumulating every violation before reporting.
func (np *NewPlayer) Validate() error {
	if flds := np.FieldErrors(); len(flds) > 0 {
		return core.NewValidationError(ErrInvalidInput, flds...)
	}
	return nil
}

// FieldErrors reports all violations without wrapping them, so multi-player
// submissions can merge per-player errors into one keyed map.
func (np *NewPlayer) FieldErrors() []core.FieldError {
	np.FullName = core.CleanString(np.FullName)
	np.DateOfBirth = core.CleanString(np.DateOfBirth)

	flds := core.FieldErrors(np)

	if np.DateOfBirth != "" {
		dob, err := parseDOB(np.DateOfBirth)
		if err != nil {
			flds = append(flds, core.FieldError{Field: "dateOfBirth", Error: "invalid date of birth"})
		} else {
			np.DOB = dob
		}
	}
	return flds
}

func parseDOB(s string) (time.Time, error) {
	var err error
	for _, layout := range dobLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// UpdatePlayer defines what information may be provided to modify a player.
type UpdatePlayer struct {
	FullName       string `json:"fullName"`
	Gender         string `json:"gender" validate:"omitempty,oneof=Male Female"`
	School         string `json:"school"`
	Grade          int    `json:"grade" validate:"omitempty,min=1,max=12"`
	HealthConcerns string `json:"healthConcerns"`
	AAUNumber      string `json:"aauNumber"`
}

func (up *UpdatePlayer) Validate() error {
	up.FullName = core.CleanString(up.FullName)
	if flds := core.FieldErrors(up); len(flds) > 0 {
		return core.NewValidationError(ErrInvalidInput, flds...)
	}
	return nil
}
