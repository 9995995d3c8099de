package provisioning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/personnel-records/internal/account"
	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/frahmantamala/personnel-records/internal/metrics"
)

const credentialLength = 12

type OutcomeKind string

const (
	OutcomeCreated       OutcomeKind = "created"
	OutcomeSkippedEmail  OutcomeKind = "skipped_no_email"
	OutcomeSkippedLinked OutcomeKind = "skipped_linked"
	OutcomeFailed        OutcomeKind = "failed"
)

// Candidate is the slice of a personnel record provisioning needs.
type Candidate struct {
	PersonnelID        int64
	IDDocument         string
	FirstNames         string
	LastNames          string
	Phone              string
	InstitutionalEmail string
	AccountID          *int64
}

type Result struct {
	Outcome   OutcomeKind `json:"outcome"`
	AccountID int64       `json:"account_id,omitempty"`
	Username  string      `json:"username,omitempty"`
	// Credential is only populated for created accounts.
	Credential string `json:"-"`
}

type AccountStore interface {
	ExistsForPersonnel(ctx context.Context, personnelID int64) (bool, error)
	Create(ctx context.Context, a *account.Account, passwordHash string) error
}

type Config struct {
	// LegacyCredentials derives the first password from the reversed id
	// document instead of a random one. Reset is still forced.
	LegacyCredentials bool
	BcryptCost        int
}

type Provisioner struct {
	accounts AccountStore
	cfg      Config
	logger   *slog.Logger
}

func NewProvisioner(accounts AccountStore, cfg Config, logger *slog.Logger) *Provisioner {
	return &Provisioner{accounts: accounts, cfg: cfg, logger: logger}
}

// Provision creates an authorized-user account linked to the personnel
// record. Records without an institutional email or with a linked account
// are skipped without error.
func (p *Provisioner) Provision(ctx context.Context, c Candidate) (Result, error) {
	result, err := p.provision(ctx, c)
	if err != nil {
		metrics.ProvisioningOutcomes.WithLabelValues(string(OutcomeFailed)).Inc()
		return Result{Outcome: OutcomeFailed}, err
	}
	metrics.ProvisioningOutcomes.WithLabelValues(string(result.Outcome)).Inc()
	return result, nil
}

func (p *Provisioner) provision(ctx context.Context, c Candidate) (Result, error) {
	if strings.TrimSpace(c.InstitutionalEmail) == "" {
		p.logger.DebugContext(ctx, "provisioning skipped: no institutional email", "personnel_id", c.PersonnelID)
		return Result{Outcome: OutcomeSkippedEmail}, nil
	}
	if c.AccountID != nil {
		return Result{Outcome: OutcomeSkippedLinked, AccountID: *c.AccountID}, nil
	}
	linked, err := p.accounts.ExistsForPersonnel(ctx, c.PersonnelID)
	if err != nil {
		return Result{}, fmt.Errorf("check linked account: %w", err)
	}
	if linked {
		return Result{Outcome: OutcomeSkippedLinked}, nil
	}
	if strings.TrimSpace(c.IDDocument) == "" {
		return Result{}, errors.New("personnel has no id document to use as username")
	}

	credential, err := p.credential(c)
	if err != nil {
		return Result{}, fmt.Errorf("generate credential: %w", err)
	}
	hash, err := auth.HashPassword(credential, p.cfg.BcryptCost)
	if err != nil {
		return Result{}, fmt.Errorf("hash credential: %w", err)
	}

	personnelID := c.PersonnelID
	a := &account.Account{
		Username:          strings.TrimSpace(c.IDDocument),
		Email:             strings.TrimSpace(c.InstitutionalEmail),
		FirstName:         c.FirstNames,
		LastName:          c.LastNames,
		Phone:             c.Phone,
		Role:              auth.RoleAuthorizedUser,
		IsActive:          true,
		MustResetPassword: true,
		PersonnelID:       &personnelID,
	}
	if err := p.accounts.Create(ctx, a, hash); err != nil {
		return Result{}, fmt.Errorf("create account for personnel %d: %w", c.PersonnelID, err)
	}

	p.logger.InfoContext(ctx, "account provisioned",
		"personnel_id", c.PersonnelID,
		"account_id", a.ID,
		"legacy_credential", p.cfg.LegacyCredentials)
	return Result{Outcome: OutcomeCreated, AccountID: a.ID, Username: a.Username, Credential: credential}, nil
}

func (p *Provisioner) credential(c Candidate) (string, error) {
	if p.cfg.LegacyCredentials {
		return reverse(strings.TrimSpace(c.IDDocument)), nil
	}
	return auth.GenerateOneTimePassword(credentialLength)
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
