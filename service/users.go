package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vu-thanh-do/blockchain-todu/core"
	"github.com/vu-thanh-do/blockchain-todu/ports"
)

// UserService holds the admin operations on principals
type UserService struct {
	auth       *AuthService
	identities *Identities
	eventPub   ports.EventPublisher
	log        zerolog.Logger
}

func NewUserService(auth *AuthService, identities *Identities, eventPub ports.EventPublisher, log zerolog.Logger) *UserService {
	return &UserService{
		auth:       auth,
		identities: identities,
		eventPub:   eventPub,
		log:        log.With().Str("component", "users").Logger(),
	}
}

// Provisioned is a principal created by an admin, with its secret revealed once
type Provisioned struct {
	Principal core.Principal
	Secret    string
}

func (s *UserService) List(ctx context.Context) ([]core.Principal, error) {
	return s.identities.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (core.Principal, error) {
	return s.identities.FindByID(ctx, id)
}

// Create provisions a wallet and principal. Unlike registration no session is issued.
func (s *UserService) Create(ctx context.Context, actor core.Principal, in RegisterInput) (Provisioned, error) {
	principal, secret, err := s.auth.provision(ctx, in)
	if err != nil {
		return Provisioned{}, err
	}

	s.publish(ctx, core.EventRegistered, principal, actor)
	return Provisioned{Principal: principal, Secret: secret}, nil
}

// Update applies a partial update. Changing an admin's status is refused here as well as
// through SetStatus.
func (s *UserService) Update(ctx context.Context, actor core.Principal, id string, update core.PrincipalUpdate) (core.Principal, error) {
	if update.Status != nil {
		if err := s.checkStatusChange(ctx, id); err != nil {
			return core.Principal{}, err
		}
	}

	principal, err := s.identities.UpdateFields(ctx, id, update)
	if err != nil {
		return core.Principal{}, err
	}

	kind := core.EventPrincipalUpdated
	if update.Status != nil {
		kind = core.EventStatusChanged
	}
	s.publish(ctx, kind, principal, actor)
	return principal, nil
}

// SetStatus activates or deactivates a non-admin principal
func (s *UserService) SetStatus(ctx context.Context, actor core.Principal, id string, status core.Status) (core.Principal, error) {
	if !status.Valid() {
		return core.Principal{}, core.ErrInvalidStatus
	}
	return s.Update(ctx, actor, id, core.PrincipalUpdate{Status: &status})
}

// Delete hard deletes a principal
func (s *UserService) Delete(ctx context.Context, actor core.Principal, id string) error {
	principal, err := s.identities.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.identities.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, core.EventPrincipalDeleted, principal, actor)
	return nil
}

func (s *UserService) checkStatusChange(ctx context.Context, id string) error {
	target, err := s.identities.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if target.Role == core.RoleAdmin {
		return core.ErrAdminStatusLocked
	}
	return nil
}

func (s *UserService) publish(ctx context.Context, kind core.AuthEventType, principal, actor core.Principal) {
	publishEvent(ctx, s.eventPub, s.log, core.AuthEvent{
		Type:        kind,
		PrincipalID: principal.ID,
		Address:     principal.Address,
		Username:    principal.Username,
		ActorID:     actor.ID,
		OccurredAt:  time.Now().UTC(),
	})
}
