// Package provision creates, updates and removes accounts together with
// their role profile, and signs accounts in.
package provision

import (
	"context"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/garnizeh/frota/internal/apperr"
	"github.com/garnizeh/frota/internal/auth"
	"github.com/garnizeh/frota/internal/imagestore"
	"github.com/garnizeh/frota/internal/tokenstore"
	"github.com/garnizeh/frota/pkg/models"
	"github.com/garnizeh/frota/pkg/repository"
)

// Minimum password lengths per creation path.
const (
	MinAdminPassword    = 6
	MinRegisterPassword = 6
	MinMemberPassword   = 8
)

// driverPhotoFolder is where driver photos land in the image store.
const driverPhotoFolder = "drivers"

type Service struct {
	store   repository.Store
	tokens  *auth.TokenManager
	images  imagestore.Uploader
	revoker tokenstore.Revoker
	log     *zap.Logger
}

// New wires the provisioner. images may be nil, in which case photos are
// ignored; a nil revoker falls back to an in-memory list.
func New(store repository.Store, tokens *auth.TokenManager, images imagestore.Uploader, revoker tokenstore.Revoker, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if revoker == nil {
		revoker = tokenstore.NewMemory()
	}
	return &Service{store: store, tokens: tokens, images: images, revoker: revoker, log: log}
}

// NewAccount is the identity half shared by every creation input.
type NewAccount struct {
	Name     string
	Email    string
	Password string
	CPF      *string
}

func (n *NewAccount) normalize() {
	n.Name = strings.TrimSpace(n.Name)
	n.Email = strings.ToLower(strings.TrimSpace(n.Email))
	n.CPF = trimmed(n.CPF)
}

func (n NewAccount) check(minPassword int) error {
	if n.Name == "" {
		return apperr.InvalidField("name", "name is required")
	}
	if !validEmail(n.Email) {
		return apperr.InvalidField("email", "email is invalid")
	}
	if len(n.Password) < minPassword {
		return apperr.InvalidField("password", "password is too short")
	}
	return nil
}

// validEmail accepts a bare address only, not "Name <addr>" forms.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// AccountChanges is the identity half of an update. Nil fields are kept.
type AccountChanges struct {
	Name     *string
	Email    *string
	Password *string
	Active   *bool
	CPF      *string
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// accountUpdate hashes a new password ahead of the transaction so bcrypt
// never runs while a connection is held.
func (s *Service) accountUpdate(ch AccountChanges, cnpj *string, minPassword int) (models.AccountUpdate, error) {
	u := models.AccountUpdate{Active: ch.Active, CPF: trimmed(ch.CPF), CNPJ: trimmed(cnpj)}
	if ch.Name != nil {
		name := strings.TrimSpace(*ch.Name)
		if name == "" {
			return u, apperr.InvalidField("name", "name is required")
		}
		u.Name = &name
	}
	if ch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*ch.Email))
		if !validEmail(email) {
			return u, apperr.InvalidField("email", "email is invalid")
		}
		u.Email = &email
	}
	if ch.Password != nil {
		if len(*ch.Password) < minPassword {
			return u, apperr.InvalidField("password", "password is too short")
		}
		hash, err := auth.HashPassword(*ch.Password)
		if err != nil {
			return u, err
		}
		u.PasswordHash = &hash
	}
	return u, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string) error {
	existing, err := s.store.FindAccountByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.Conflict("email", "email already registered")
	}
	return nil
}

// ensureTaxIDFree checks the named tax id column only; a cpf may equal some
// company's cnpj.
func (s *Service) ensureTaxIDFree(ctx context.Context, field string, value *string) error {
	if value == nil {
		return nil
	}
	find := s.store.FindAccountByCPF
	if field == "cnpj" {
		find = s.store.FindAccountByCNPJ
	}
	existing, err := find(ctx, *value)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.Conflict(field, field+" already registered")
	}
	return nil
}

func (s *Service) ensureCNHFree(ctx context.Context, cnh string) error {
	existing, err := s.store.FindDriverByCNH(ctx, cnh)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.Conflict("cnh", "cnh already registered")
	}
	return nil
}

// ensureCompany checks an optional company reference.
func (s *Service) ensureCompany(ctx context.Context, id *string) error {
	if id == nil || *id == "" {
		return nil
	}
	c, err := s.store.GetCompany(ctx, *id)
	if err != nil {
		return err
	}
	if c == nil {
		return apperr.NotFound("company not found")
	}
	return nil
}

// provision runs the shared creation path: hash, then insert the account
// and its profile in one transaction. attach receives the new account id.
func (s *Service) provision(ctx context.Context, n NewAccount, role models.Role, cnpj *string, attach func(tx repository.Store, accountID string) error) (*models.Account, error) {
	hash, err := auth.HashPassword(n.Password)
	if err != nil {
		return nil, err
	}

	acc := &models.Account{
		Name:         n.Name,
		Email:        n.Email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CPF:          n.CPF,
		CNPJ:         cnpj,
	}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.CreateAccount(ctx, acc); err != nil {
			return err
		}
		return attach(tx, acc.ID)
	})
	if err != nil {
		return nil, s.creationError(role, err)
	}

	acc.PasswordHash = ""
	if err := s.store.LoadProfile(ctx, acc); err != nil {
		return nil, err
	}
	s.log.Info("account provisioned", zap.String("account_id", acc.ID), zap.String("role", string(role)))
	return acc, nil
}

// creationError keeps classified failures and hides everything else behind
// a generic BadRequest.
func (s *Service) creationError(role models.Role, err error) error {
	if apperr.Classified(err) {
		return err
	}
	s.log.Error("account creation failed", zap.String("role", string(role)), zap.Error(err))
	return &apperr.Error{Kind: apperr.KindBadRequest, Message: "failed to create account", Err: err}
}

// uploadPhoto stores the photo and returns its URL. Failures are logged and
// yield an empty URL.
func (s *Service) uploadPhoto(ctx context.Context, photo []byte) string {
	if len(photo) == 0 || s.images == nil {
		return ""
	}
	url, err := s.images.Upload(ctx, driverPhotoFolder, photo)
	if err != nil {
		s.log.Warn("driver photo upload failed", zap.Error(err))
		return ""
	}
	return url
}

func notFoundIfNil(a *models.Account, err error, what string) (*models.Account, error) {
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound(what + " not found")
	}
	return a, nil
}
