package client

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/fastbreakhq/fastbreak/core"
	"github.com/fastbreakhq/fastbreak/core/guardian"
	"github.com/fastbreakhq/fastbreak/core/payment"
	"github.com/fastbreakhq/fastbreak/core/player"
	"github.com/fastbreakhq/fastbreak/core/season"
)

// Step identifies a position in the enrollment stepper.
type Step int

const (
	StepRegistration Step = iota + 1
	StepPayment
	StepConfirmation
)

func (s Step) String() string {
	switch s {
	case StepRegistration:
		return "registration"
	case StepPayment:
		return "payment"
	case StepConfirmation:
		return "confirmation"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Workflow drives the enrollment stepper: registration, then payment, then a
// read-only confirmation. Form state lives here; the backend is only touched
// on submission.
type Workflow struct {
	session   *Session
	api       *Client
	tokenizer Tokenizer
	logger    core.Logger

	step        Step
	summaryOnly bool
	season      season.Season
	year        int

	account  guardian.NewGuardian
	players  []player.NewPlayer
	selected []string // roster player IDs to re-enroll
	pending  []player.Player
	record   payment.Record

	nowFunc func() time.Time // mockable
}

// NewWorkflow positions the stepper for the session's current roster: players
// already enrolled but unpaid resume at payment, a fully enrolled and paid
// roster collapses to a summary, everyone else starts at registration with
// one empty player form.
func NewWorkflow(session *Session, api *Client, tokenizer Tokenizer, logger core.Logger) *Workflow {
	w := &Workflow{
		session:   session,
		api:       api,
		tokenizer: tokenizer,
		logger:    logger,
		nowFunc:   time.Now,
	}
	w.season, w.year = season.NextAt(w.nowFunc())
	w.enter()
	return w
}

func (w *Workflow) enter() {
	w.step = StepRegistration
	w.players = []player.NewPlayer{{}}

	st := w.session.State()
	if !st.IsAuthenticated() || len(st.Roster) == 0 {
		return
	}

	enrolled := 0
	var unpaid []player.Player
	for _, p := range st.Roster {
		if !p.RegisteredFor(w.season, w.year) {
			continue
		}
		enrolled++
		if !p.PaidFor(w.season, w.year) {
			unpaid = append(unpaid, p)
		}
	}
	switch {
	case enrolled == len(st.Roster) && len(unpaid) == 0:
		w.summaryOnly = true
		w.step = StepConfirmation
	case len(unpaid) > 0:
		w.pending = unpaid
		w.step = StepPayment
	}
}

func (w *Workflow) Step() Step               { return w.step }
func (w *Workflow) SummaryOnly() bool        { return w.summaryOnly }
func (w *Workflow) Season() (season.Season, int) { return w.season, w.year }
func (w *Workflow) Pending() []player.Player { return w.pending }
func (w *Workflow) Record() payment.Record   { return w.record }

// Account exposes the parent form for new-user registrations.
func (w *Workflow) Account() *guardian.NewGuardian { return &w.account }

func (w *Workflow) Players() []player.NewPlayer { return w.players }

// SetPlayer replaces the player form at the given index.
func (w *Workflow) SetPlayer(i int, np player.NewPlayer) {
	if i >= 0 && i < len(w.players) {
		w.players[i] = np
	}
}

// AddPlayer appends an empty player form. No backend call is made.
func (w *Workflow) AddPlayer() {
	w.players = append(w.players, player.NewPlayer{})
}

// RemovePlayer drops the player form at the given index; the last remaining
// form cannot be removed.
func (w *Workflow) RemovePlayer(i int) error {
	if len(w.players) <= 1 {
		return errors.New("at least one player is required")
	}
	if i < 0 || i >= len(w.players) {
		return errors.Errorf("no player at index %d", i)
	}
	w.players = append(w.players[:i], w.players[i+1:]...)
	return nil
}

// SelectPlayers marks existing roster players for re-enrollment in the
// upcoming enrollment period.
func (w *Workflow) SelectPlayers(ids ...string) { w.selected = ids }

// SubmitRegistration validates every field, accumulating all violations into
// one keyed error before any backend call. New users get an account plus
// players in the same submission; signed-in users enroll selected roster
// players and register any net-new ones.
func (w *Workflow) SubmitRegistration(ctx context.Context) error {
	if w.step != StepRegistration {
		return errors.Errorf("cannot submit registration from %s", w.step)
	}
	st := w.session.State()

	forms := w.players
	if st.IsAuthenticated() && len(w.selected) > 0 {
		forms = nonEmptyForms(forms)
	}

	var flds []core.FieldError
	if !st.IsAuthenticated() {
		flds = append(flds, w.account.FieldErrors()...)
	}
	for i := range forms {
		for _, fe := range forms[i].FieldErrors() {
			if i > 0 {
				fe.Field = fmt.Sprintf("players[%d].%s", i, fe.Field)
			}
			flds = append(flds, fe)
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(guardian.ErrInvalidInput, flds...)
	}

	if !st.IsAuthenticated() {
		if err := w.session.Register(ctx, w.account); err != nil {
			return err
		}
	}

	var pending []player.Player
	if len(w.selected) > 0 {
		updated, err := w.api.UpdateSeasons(ctx, UpdateSeasonsRequest{
			PlayerIDs: w.selected,
			Season:    w.season,
			Year:      w.year,
		})
		if err != nil {
			return registrationFailure(err, "enrolling players")
		}
		pending = append(pending, updated...)
	}
	if len(forms) > 0 {
		registered, err := w.api.RegisterPlayers(ctx, RegisterPlayersRequest{
			Season:  w.season,
			Year:    w.year,
			Players: forms,
		})
		if err != nil {
			return registrationFailure(err, "registering players")
		}
		pending = append(pending, registered...)
	}

	w.pending = pending
	w.step = StepPayment
	return nil
}

// Total computes the charge for the pending players under the given package.
// The backend recomputes the same amount on capture.
func (w *Workflow) Total(packageType string) (int, error) {
	total, ok := payment.TotalCents(packageType, len(w.pending))
	if !ok {
		return 0, core.NewValidationError(payment.ErrInvalidInput,
			core.FieldError{Field: "packageType", Error: "unknown package"})
	}
	return total, nil
}

// SubmitPayment tokenizes the card and captures the charge for every pending
// player. Any failure keeps the stepper on the payment step; the backend's
// payment id is the sole signal of success.
func (w *Workflow) SubmitPayment(ctx context.Context, packageType, receiptEmail string) error {
	if w.step != StepPayment {
		return errors.Errorf("cannot submit payment from %s", w.step)
	}

	var flds []core.FieldError
	if _, ok := payment.PriceCents(packageType); !ok {
		flds = append(flds, core.FieldError{Field: "packageType", Error: "unknown package"})
	}
	if receiptEmail = core.CleanString(receiptEmail, true /* lower */); receiptEmail == "" {
		flds = append(flds, core.FieldError{Field: "buyerEmailAddress", Error: "receipt email is required"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(payment.ErrInvalidInput, flds...)
	}

	tok, err := w.tokenizer.Tokenize(ctx)
	if err != nil {
		if tokErr, ok := errors.Cause(err).(*TokenizationError); ok {
			return tokErr
		}
		return &TokenizationError{Status: "error", Err: err}
	}

	st := w.session.State()
	ids := make([]string, 0, len(w.pending))
	for _, p := range w.pending {
		ids = append(ids, p.ID)
	}
	rec, err := w.api.CapturePayment(ctx, payment.CapturePayment{
		SourceID:    tok.Token,
		GuardianID:  st.Guardian.ID,
		PlayerIDs:   ids,
		PackageType: packageType,
		BuyerEmail:  receiptEmail,
		Season:      w.season,
		Year:        w.year,
		Card:        tok.Card,
	})
	if err != nil {
		return &PaymentError{Message: paymentFailureMessage(err)}
	}
	if rec.ProcessorID == "" {
		return &PaymentError{Message: "payment was not confirmed"}
	}

	w.record = rec
	w.step = StepConfirmation
	return nil
}

func nonEmptyForms(forms []player.NewPlayer) []player.NewPlayer {
	kept := make([]player.NewPlayer, 0, len(forms))
	for _, f := range forms {
		if (f != player.NewPlayer{}) {
			kept = append(kept, f)
		}
	}
	return kept
}

func registrationFailure(err error, action string) error {
	if apiErr, ok := errors.Cause(err).(*APIError); ok && apiErr.StatusCode < 500 {
		return &RegistrationError{Message: authFailureMessage(apiErr)}
	}
	return errors.Wrap(err, action)
}

func paymentFailureMessage(err error) string {
	if apiErr, ok := errors.Cause(err).(*APIError); ok {
		return authFailureMessage(apiErr)
	}
	return err.Error()
}
