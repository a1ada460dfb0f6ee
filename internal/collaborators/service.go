// Package collaborators onboards collaborators: an admin mails an invitation
// link and relays a six digit code, and the invitee redeems both to register.
package collaborators

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/newsletter/handler"
	"github.com/dmitrymomot/newsletter/internal/accounts"
	"github.com/dmitrymomot/newsletter/internal/domain"
	"github.com/dmitrymomot/newsletter/internal/templates"
	"github.com/dmitrymomot/newsletter/internal/views"
	"github.com/dmitrymomot/newsletter/pkg/email"
	"github.com/dmitrymomot/newsletter/pkg/flash"
	"github.com/dmitrymomot/newsletter/pkg/logger"
)

const invitationSubject = "Welcome!"

type Store interface {
	CreateInvitation(ctx context.Context, token domain.Token, code domain.ValidationCode) error
	InvitationExists(ctx context.Context, token domain.Token) (bool, error)
	Redeem(ctx context.Context, token domain.Token, code domain.ValidationCode, u accounts.User) error
}

type Renderer interface {
	CollaboratorInvitation(ctx context.Context, link string) (templates.Message, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

type Service struct {
	store        Store
	mailer       email.EmailSender
	renderer     Renderer
	hasher       PasswordHasher
	flash        *flash.Messenger
	views        *views.Views
	baseURL      string
	log          *slog.Logger
	errorHandler handler.ErrorHandler[handler.Context]
}

type Option func(*Service)

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func WithErrorHandler(h handler.ErrorHandler[handler.Context]) Option {
	return func(s *Service) {
		if h != nil {
			s.errorHandler = h
		}
	}
}

type Deps struct {
	Store    Store
	Mailer   email.EmailSender
	Renderer Renderer
	Hasher   PasswordHasher
	Flash    *flash.Messenger
	Views    *views.Views
	BaseURL  string
}

func NewService(deps Deps, opts ...Option) *Service {
	s := &Service{
		store:    deps.Store,
		mailer:   deps.Mailer,
		renderer: deps.Renderer,
		hasher:   deps.Hasher,
		flash:    deps.Flash,
		views:    deps.Views,
		baseURL:  strings.TrimRight(deps.BaseURL, "/"),
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.errorHandler == nil {
		s.errorHandler = handler.NewErrorHandler(s.log)
	}
	return s
}

// Invite stores a fresh invitation, mails its link to rawEmail and returns the
// code the admin has to pass on. Only admins may invite.
func (s *Service) Invite(ctx context.Context, inviter accounts.Principal, rawEmail string) (domain.ValidationCode, error) {
	if !inviter.IsAdmin() {
		return domain.ValidationCode{}, ErrNotAdmin
	}
	to, err := domain.ParseEmail(rawEmail)
	if err != nil {
		return domain.ValidationCode{}, errors.Join(ErrInvalidEmail, err)
	}

	token, err := domain.NewToken()
	if err != nil {
		return domain.ValidationCode{}, err
	}
	code, err := domain.NewValidationCode()
	if err != nil {
		return domain.ValidationCode{}, err
	}

	if err := s.store.CreateInvitation(ctx, token, code); err != nil {
		return domain.ValidationCode{}, err
	}

	link := s.baseURL + "/collaborator?invitation_token=" + url.QueryEscape(token.String())
	msg, err := s.renderer.CollaboratorInvitation(ctx, link)
	if err != nil {
		return domain.ValidationCode{}, err
	}
	if err := s.mailer.SendEmail(ctx, email.SendEmailParams{
		To:      to.String(),
		Subject: invitationSubject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		Tag:     "collaborator-invitation",
	}); err != nil {
		return domain.ValidationCode{}, errors.Join(ErrSendInvitation, err)
	}

	s.log.InfoContext(ctx, "collaborator invited",
		logger.UserID(inviter.UserID),
		logger.Recipient(to.String()),
		logger.Event("collaborator.invited"),
		logger.Component("collaborators"),
	)
	return code, nil
}

// CheckInvitation parses rawToken and confirms it is still pending.
func (s *Service) CheckInvitation(ctx context.Context, rawToken string) (domain.Token, error) {
	token, err := domain.ParseToken(rawToken)
	if err != nil {
		return domain.Token{}, errors.Join(ErrInvalidToken, err)
	}
	ok, err := s.store.InvitationExists(ctx, token)
	if err != nil {
		return domain.Token{}, err
	}
	if !ok {
		return domain.Token{}, ErrInvitationNotFound
	}
	return token, nil
}

type Registration struct {
	Token    string
	Code     string
	Username string
	Password string
}

// Register creates a collaborator account from a pending invitation.
func (s *Service) Register(ctx context.Context, reg Registration) (uuid.UUID, error) {
	token, err := domain.ParseToken(reg.Token)
	if err != nil {
		return uuid.Nil, errors.Join(ErrInvalidToken, err)
	}
	code, err := domain.ParseValidationCode(reg.Code)
	if err != nil {
		return uuid.Nil, errors.Join(ErrInvalidCode, err)
	}
	if strings.TrimSpace(reg.Username) == "" {
		v := handler.NewValidationError()
		v.Add("username", "cannot be empty")
		return uuid.Nil, v
	}
	if err := accounts.ValidatePasswordLength(reg.Password); err != nil {
		return uuid.Nil, err
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return uuid.Nil, err
	}

	u := accounts.User{
		ID:           uuid.New(),
		Username:     reg.Username,
		PasswordHash: hash,
		Role:         domain.RoleCollaborator,
	}
	if err := s.store.Redeem(ctx, token, code, u); err != nil {
		return uuid.Nil, err
	}

	s.log.InfoContext(ctx, "collaborator registered",
		logger.UserID(u.ID),
		logger.Event("collaborator.registered"),
		logger.Component("collaborators"),
	)
	return u.ID, nil
}
