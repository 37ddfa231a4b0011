// Package services contains server-side business logic. This file implements
// UserService, which lists and looks up directory accounts, registers and
// creates them through the normalize/validate/integrity pipeline, and runs
// account recovery.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/teamkeeper/internal/common"
	"github.com/dmitrijs2005/teamkeeper/internal/dbx"
	"github.com/dmitrijs2005/teamkeeper/internal/logging"
	"github.com/dmitrijs2005/teamkeeper/internal/server/config"
	"github.com/dmitrijs2005/teamkeeper/internal/server/credentials"
	"github.com/dmitrijs2005/teamkeeper/internal/server/finders"
	"github.com/dmitrijs2005/teamkeeper/internal/server/integrity"
	"github.com/dmitrijs2005/teamkeeper/internal/server/models"
	"github.com/dmitrijs2005/teamkeeper/internal/server/normalize"
	"github.com/dmitrijs2005/teamkeeper/internal/server/query"
	"github.com/dmitrijs2005/teamkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/teamkeeper/internal/server/roles"
	"github.com/dmitrijs2005/teamkeeper/internal/server/validation"
)

const (
	RuleUniqueUserKey     = "uniqueUserGpgkey"
	RuleUniqueFingerprint = "uniqueFingerprint"
	RuleKnownRole         = "validRole"
)

// UserService is the entry point for user reads and writes. Every write runs
// in one transaction, so the default-role lookup, the integrity checks and
// the insert see the same snapshot. Creation also holds a lock on the
// username, so concurrent writers of one name cannot both pass the
// uniqueness rule.
type UserService struct {
	db                            *sql.DB
	repomanager                   repomanager.RepositoryManager
	roles                         *roles.Registry
	finders                       *finders.Composer
	validator                     *validation.Validator
	logger                        logging.Logger
	recoveryTokenValidityDuration time.Duration
	now                           func() time.Time
}

// NewUserService constructs a UserService using repositories, the role
// registry loaded at startup and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, reg *roles.Registry, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:                            db,
		repomanager:                   m,
		roles:                         reg,
		finders:                       finders.New(finders.DefaultSchema()),
		validator:                     validation.New(),
		logger:                        logger.With("module", "users"),
		recoveryTokenValidityDuration: cfg.RecoveryTokenValidityDuration,
		now:                           time.Now,
	}
}

// checkRole rejects acting roles the registry does not know. An empty role is
// left to the finders, which report it as missing context.
func (s *UserService) checkRole(finder, role string) error {
	if role == "" {
		return nil
	}
	if _, ok := s.roles.ByName(role); ok {
		return nil
	}
	return &common.ValidationError{
		Context: finder,
		Violations: []common.Violation{{
			Field:   "role",
			Rule:    RuleKnownRole,
			Message: "This is not a valid role.",
		}},
	}
}

// Index lists the accounts visible to opts.Role.
func (s *UserService) Index(ctx context.Context, opts finders.Options) ([]*models.User, error) {
	if err := s.checkRole("index", opts.Role); err != nil {
		return nil, err
	}

	q, err := s.finders.Index(opts)
	if err != nil {
		return nil, err
	}

	users, err := s.repomanager.Users(s.db).Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

// View returns one account if it is visible to opts.Role.
func (s *UserService) View(ctx context.Context, opts finders.Options) (*models.User, error) {
	if err := s.checkRole("view", opts.Role); err != nil {
		return nil, err
	}

	q, err := s.finders.View(opts)
	if err != nil {
		return nil, err
	}
	return s.first(ctx, s.db, q)
}

// Authenticate resolves the owner of a key fingerprint. Unknown, inactive
// and deleted owners are all reported as common.ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, fingerprint string) (*models.User, error) {
	q, err := s.finders.Auth(finders.Options{Fingerprint: fingerprint})
	if err != nil {
		return nil, err
	}

	user, err := s.first(ctx, s.db, q)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// Register creates a self-registered account. The payload is normalized
// first, so caller-supplied active, deleted and role_id values never reach
// the store.
func (s *UserService) Register(ctx context.Context, p models.Payload) (*models.User, error) {
	return s.create(ctx, validation.Register, p)
}

// Create is the administrative creation path: validated and checked, but not
// normalized.
func (s *UserService) Create(ctx context.Context, p models.Payload) (*models.User, error) {
	return s.create(ctx, validation.Default, p)
}

func (s *UserService) create(ctx context.Context, vctx validation.Context, p models.Payload) (*models.User, error) {
	var user *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		usersRepo := s.repomanager.Users(tx)
		rolesRepo := s.repomanager.Roles(tx)

		normalized, err := normalize.New(rolesRepo).BeforeMarshal(ctx, vctx, p)
		if err != nil {
			return err
		}

		if err := s.validator.Check(vctx, validation.Create, normalized); err != nil {
			return err
		}

		if username, _ := normalized.String(common.FieldUsername); username != "" {
			if err := usersRepo.LockUsername(ctx, username); err != nil {
				return fmt.Errorf("error locking username: %w", err)
			}
		}

		if err := integrity.New(usersRepo, rolesRepo).Check(ctx, normalized); err != nil {
			return err
		}

		user, err = usersRepo.Create(ctx, normalized.ToUser())
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		if role, ok := s.roles.ByID(user.RoleID); ok {
			user.Role = &role
		}
		return nil
	})
	if err != nil {
		s.logger.Warn(ctx, "user not created", "context", vctx, "error", err)
		return nil, err
	}

	s.logger.Info(ctx, "user created", "context", vctx, "user_id", user.ID, "role_id", user.RoleID)
	return user, nil
}

// Recover starts account recovery for username: it picks the best matching
// non-deleted account, revokes its outstanding tokens and issues a new one.
func (s *UserService) Recover(ctx context.Context, username string) (*models.User, *models.AuthenticationToken, error) {
	p := models.Payload{"username": username}
	if err := s.validator.Check(validation.Recover, validation.Create, p); err != nil {
		return nil, nil, err
	}

	user, err := s.first(ctx, s.db, s.finders.Recover(username))
	if err != nil {
		return nil, nil, err
	}

	token := &models.AuthenticationToken{
		UserID:  user.ID,
		Active:  true,
		Expires: s.now().Add(s.recoveryTokenValidityDuration),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.AuthTokens(tx)

		revoked, err := repo.DeactivateForUser(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("error revoking tokens: %w", err)
		}
		if revoked > 0 {
			s.logger.Debug(ctx, "previous recovery tokens revoked", "user_id", user.ID, "count", revoked)
		}

		if err := repo.Create(ctx, token); err != nil {
			return fmt.Errorf("error issuing token: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info(ctx, "recovery token issued", "user_id", user.ID, "active", user.Active)
	return user, token, nil
}

// AddCredential attaches an armored OpenPGP public key to a non-deleted
// account so Authenticate can find it by fingerprint. An account holds at
// most one key and a fingerprint belongs to at most one account.
func (s *UserService) AddCredential(ctx context.Context, userID, armoredKey string) (*models.Gpgkey, error) {
	key, err := credentials.Parse(armoredKey)
	if err != nil {
		return nil, err
	}
	key.UserID = userID

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.first(ctx, tx, s.finders.Setup(userID)); err != nil {
			return err
		}

		repo := s.repomanager.Gpgkeys(tx)
		hasKey, taken, err := repo.Conflicts(ctx, userID, key.Fingerprint)
		if err != nil {
			return fmt.Errorf("error checking key conflicts: %w", err)
		}

		var violations []common.Violation
		if hasKey {
			violations = append(violations, common.Violation{
				Field: credentials.FieldArmoredKey, Rule: RuleUniqueUserKey,
				Message: "This user already has a key.",
			})
		}
		if taken {
			violations = append(violations, common.Violation{
				Field: credentials.FieldArmoredKey, Rule: RuleUniqueFingerprint,
				Message: "This key is already in use.",
			})
		}
		if len(violations) > 0 {
			return &common.IntegrityViolationError{Violations: violations}
		}

		if err := repo.Create(ctx, key); err != nil {
			return fmt.Errorf("error storing key: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "credential added", "user_id", userID, "fingerprint", key.Fingerprint)
	return key, nil
}

// SoftDelete flags the account as deleted. Its username stays reserved.
func (s *UserService) SoftDelete(ctx context.Context, id string) error {
	if err := s.repomanager.Users(s.db).SoftDelete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error deleting user: %w", err)
	}

	s.logger.Info(ctx, "user deleted", "user_id", id)
	return nil
}

func (s *UserService) first(ctx context.Context, db dbx.DBTX, q *query.Select) (*models.User, error) {
	user, err := s.repomanager.Users(db).First(ctx, q)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	return user, nil
}
