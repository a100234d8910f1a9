package guardian

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/fastbreakhq/fastbreak/core"
	"github.com/fastbreakhq/fastbreak/core/address"
	"github.com/fastbreakhq/fastbreak/core/season"
)

// Contact is a denormalized additional-guardian record attached to the
// primary account holder. Contacts have no login credentials.
type Contact struct {
	FullName     string `json:"fullName" validate:"required"`
	Phone        string `json:"phone" validate:"omitempty,usphone"`
	Email        string `json:"email" validate:"omitempty,email"`
	Relationship string `json:"relationship"`
}

// SeasonYear tracks an enrollment cycle the family took part in.
type SeasonYear struct {
	Season season.Season `json:"season"`
	Year   int           `json:"year"`
}

// Guardian is the primary account-holding parent record for a family.
type Guardian struct {
	ID                  string          `json:"id"`
	Email               string          `json:"email"`
	FullName            string          `json:"fullName"`
	Phone               string          `json:"phone"`
	Address             address.Address `json:"address"`
	Relationship        string          `json:"relationship"`
	IsAdmin             bool            `json:"isAdmin"`
	IsCoach             bool            `json:"isCoach"`
	AAUNumber           string          `json:"aauNumber"`
	AdditionalGuardians []Contact       `json:"additionalGuardians,omitempty"`
	Seasons             []SeasonYear    `json:"seasons,omitempty"`
	DismissedNotices    []string        `json:"dismissedNotices,omitempty"`
	PasswordHash        []byte          `json:"-"`
	CreatedAt           time.Time       `json:"createdAt"` // UTC
	UpdatedAt           time.Time       `json:"updatedAt"` // UTC
	LastLogin           time.Time       `json:"lastLogin"` // UTC
}

func (g *Guardian) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	g.PasswordHash = hash
	return nil
}

func (g *Guardian) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(g.PasswordHash, []byte(pwd))
}

// HasSeason reports whether the family already has a tracked (season, year) entry.
func (g *Guardian) HasSeason(s season.Season, year int) bool {
	for _, sy := range g.Seasons {
		if sy.Season == s && sy.Year == year {
			return true
		}
	}
	return false
}

// NewGuardian contains information needed to register a new family account.
// Address arrives as the free-text line the registration form collects and is
// parsed into structured fields during validation.
type NewGuardian struct {
	FullName            string    `json:"fullName" validate:"required"`
	Email               string    `json:"email" validate:"required,email"`
	Password            string    `json:"password" validate:"required,min=6"`
	PasswordConfirm     string    `json:"passwordConfirm" validate:"required,eqfield=Password"`
	Phone               string    `json:"phone" validate:"required,usphone"`
	Address             string    `json:"address" validate:"required"`
	Relationship        string    `json:"relationship"`
	IsCoach             bool      `json:"isCoach"`
	AAUNumber           string    `json:"aauNumber"`
	AgreeToTerms        bool      `json:"agreeToTerms" validate:"required"`
	AdditionalGuardians []Contact `json:"additionalGuardians,omitempty" validate:"omitempty,dive"`

	// ParsedAddress is populated by Validate.
	ParsedAddress address.Address `json:"-"`
}

// Validate cleans the input, runs struct validation and address parsing,
// accumulating every violation before reporting, then checks email uniqueness.
func (ng *NewGuardian) Validate(svc Service) error {
	if flds := ng.FieldErrors(); len(flds) > 0 {
		return core.NewValidationError(ErrInvalidInput, flds...)
	}
	return svc.CheckUniqueness(ng.Email)
}

// FieldErrors reports all violations without wrapping them, so callers can
// merge account errors with per-player ones into a single keyed map.
func (ng *NewGuardian) FieldErrors() []core.FieldError {
	ng.FullName = core.CleanString(ng.FullName)
	ng.Email = core.CleanString(ng.Email, true /* lower */)
	ng.Phone = cleanPhone(ng.Phone)
	ng.Address = core.CleanString(ng.Address)

	flds := core.FieldErrors(ng)

	if ng.Address != "" {
		addr, _ := address.Parse(ng.Address)
		addr.State = address.NormalizeState(addr.State)
		if !addr.Valid() {
			flds = append(flds, core.FieldError{Field: "address", Error: errAddressIncomplete})
		} else if !address.IsStateCode(addr.State) {
			flds = append(flds, core.FieldError{Field: "state", Error: errUnknownState})
		} else {
			ng.ParsedAddress = addr
		}
	}
	return flds
}

// Login contains credentials submitted to authenticate a guardian.
type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (l *Login) Validate() error {
	l.Email = core.CleanString(l.Email, true /* lower */)
	return core.Validate.Struct(l)
}

// UpdateGuardian defines what information may be provided to modify an account.
type UpdateGuardian struct {
	FullName            string    `json:"fullName"`
	Phone               string    `json:"phone" validate:"omitempty,usphone"`
	Address             string    `json:"address"`
	Relationship        string    `json:"relationship"`
	AAUNumber           string    `json:"aauNumber"`
	AdditionalGuardians []Contact `json:"additionalGuardians,omitempty" validate:"omitempty,dive"`
	DismissNotice       string    `json:"dismissNotice"`

	ParsedAddress address.Address `json:"-"`
}

func (ug *UpdateGuardian) Validate(orig Guardian) error {
	ug.FullName = core.CleanString(ug.FullName)
	if ug.FullName == "" {
		ug.FullName = orig.FullName
	}
	ug.Phone = cleanPhone(ug.Phone)
	if ug.Phone == "" {
		ug.Phone = orig.Phone
	}
	ug.Address = core.CleanString(ug.Address)

	flds := core.FieldErrors(ug)

	if ug.Address != "" {
		addr, _ := address.Parse(ug.Address)
		addr.State = address.NormalizeState(addr.State)
		if !addr.Valid() {
			flds = append(flds, core.FieldError{Field: "address", Error: errAddressIncomplete})
		} else {
			ug.ParsedAddress = addr
		}
	} else {
		ug.ParsedAddress = orig.Address
	}

	if len(flds) > 0 {
		return core.NewValidationError(ErrInvalidInput, flds...)
	}
	return nil
}

// ResetPassword requests a password-reset email for an account.
type ResetPassword struct {
	Email string `json:"email" validate:"required,email"`
}

func (rp *ResetPassword) Validate() error {
	rp.Email = core.CleanString(rp.Email, true /* lower */)
	return core.Validate.Struct(rp)
}

// ConfirmPasswordReset completes a password reset with an emailed token.
type ConfirmPasswordReset struct {
	Token           string `json:"token" validate:"required"`
	UID             string `json:"uid" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func (cp ConfirmPasswordReset) Validate() error { return core.Validate.Struct(cp) }

// QueryFilter narrows admin guardian listings.
type QueryFilter struct {
	Search  string `query:"search"`
	IsCoach *bool  `query:"is_coach"`
	IsAdmin *bool  `query:"is_admin"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.IsCoach == nil && qf.IsAdmin == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
