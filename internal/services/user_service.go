// Package services provides the user repository implementations for the
// user service.
package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/arangodb/shared"
	"go.uber.org/zap"

	"github.com/imaginify/user-service/database"
	"github.com/imaginify/user-service/internal/apperror"
	"github.com/imaginify/user-service/model"
)

// UserStore is the repository contract used by the HTTP and GraphQL
// layers. Every operation returns either the resulting record or a
// normalized apperror; there are no partial states.
type UserStore interface {
	// Create inserts a new user. The external identity id must be unique;
	// re-creation fails with apperror.ErrDuplicate.
	Create(ctx context.Context, u model.User) (model.User, error)
	// GetByClerkID looks a user up by external identity id.
	GetByClerkID(ctx context.Context, clerkID string) (model.User, error)
	// Update overwrites only the supplied profile fields, never identity,
	// email or credit balance.
	Update(ctx context.Context, clerkID string, upd model.UserUpdate) (model.User, error)
	// Delete removes the user found by external identity id, keyed by its
	// internal id, and returns the removed record.
	Delete(ctx context.Context, clerkID string) (model.User, error)
	// AddCredits atomically increments the credit balance of the user with
	// the given internal id by delta (may be negative).
	AddCredits(ctx context.Context, key string, delta int) (model.User, error)
	// List returns up to limit users, newest first.
	List(ctx context.Context, limit int) ([]model.User, error)
}

// ArangoUserStore is the production UserStore backed by the users
// collection in ArangoDB.
type ArangoUserStore struct {
	connector      *database.Connector
	defaultCredits int
	log            *zap.SugaredLogger
}

// NewArangoUserStore returns a store over the given connector. Users
// created with a zero balance receive defaultCredits as starting grant.
func NewArangoUserStore(connector *database.Connector, defaultCredits int) *ArangoUserStore {
	return &ArangoUserStore{
		connector:      connector,
		defaultCredits: defaultCredits,
		log:            database.Logger().Sugar(),
	}
}

// Ensure compile-time interface check
var _ UserStore = (*ArangoUserStore)(nil)

const (
	aqlGetByClerkID = `
		FOR u IN users
			FILTER u.clerk_id == @clerkId
			LIMIT 1
			RETURN u
	`
	aqlInsertUser = `
		INSERT @doc INTO users
		RETURN NEW
	`
	aqlUpdateByClerkID = `
		FOR u IN users
			FILTER u.clerk_id == @clerkId
			UPDATE u WITH @fields IN users
			RETURN NEW
	`
	aqlRemoveByKey = `
		REMOVE @key IN users
		RETURN OLD
	`
	// Server-side arithmetic: the increment happens inside the single
	// document update, so concurrent calls never lose an update.
	aqlAddCredits = `
		FOR u IN users
			FILTER u._key == @key
			UPDATE u WITH { credit_balance: u.credit_balance + @delta, updated_at: @now } IN users
			RETURN NEW
	`
	aqlListUsers = `
		FOR u IN users
			SORT u.created_at DESC
			LIMIT @limit
			RETURN u
	`
)

func (s *ArangoUserStore) Create(ctx context.Context, u model.User) (model.User, error) {
	conn, err := s.connector.Get(ctx)
	if err != nil {
		s.log.Errorf("Create user %s: %v", u.ClerkID, err)
		return model.User{}, err
	}

	now := time.Now().UTC()
	u.Key = ""
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.CreditBalance == 0 {
		u.CreditBalance = s.defaultCredits
	}

	created, err := s.queryOne(ctx, conn, aqlInsertUser, map[string]interface{}{"doc": u})
	if err != nil {
		if isUniqueViolation(err) {
			dup := apperror.Duplicate("user", u.ClerkID)
			s.log.Errorf("Create user: %s", dup.Message)
			return model.User{}, dup
		}
		s.log.Errorf("Create user %s: %v", u.ClerkID, err)
		return model.User{}, err
	}
	return created, nil
}

func (s *ArangoUserStore) GetByClerkID(ctx context.Context, clerkID string) (model.User, error) {
	conn, err := s.connector.Get(ctx)
	if err != nil {
		s.log.Errorf("Get user %s: %v", clerkID, err)
		return model.User{}, err
	}

	u, err := s.queryOne(ctx, conn, aqlGetByClerkID, map[string]interface{}{"clerkId": clerkID})
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			err = apperror.NotFound("user", clerkID)
		}
		s.log.Errorf("Get user %s: %v", clerkID, err)
		return model.User{}, err
	}
	return u, nil
}

func (s *ArangoUserStore) Update(ctx context.Context, clerkID string, upd model.UserUpdate) (model.User, error) {
	conn, err := s.connector.Get(ctx)
	if err != nil {
		s.log.Errorf("Update user %s: %v", clerkID, err)
		return model.User{}, err
	}

	fields := upd.Fields()
	fields["updated_at"] = time.Now().UTC()

	u, err := s.queryOne(ctx, conn, aqlUpdateByClerkID, map[string]interface{}{
		"clerkId": clerkID,
		"fields":  fields,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			err = apperror.NotFound("user", clerkID)
		}
		s.log.Errorf("Update user %s: %v", clerkID, err)
		return model.User{}, err
	}
	return u, nil
}

// Delete is two-step: the lookup by external identity id reconfirms the
// internal id, which is the authoritative delete key.
func (s *ArangoUserStore) Delete(ctx context.Context, clerkID string) (model.User, error) {
	conn, err := s.connector.Get(ctx)
	if err != nil {
		s.log.Errorf("Delete user %s: %v", clerkID, err)
		return model.User{}, err
	}

	found, err := s.queryOne(ctx, conn, aqlGetByClerkID, map[string]interface{}{"clerkId": clerkID})
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			err = apperror.NotFound("user", clerkID)
		}
		s.log.Errorf("Delete user %s: %v", clerkID, err)
		return model.User{}, err
	}

	removed, err := s.queryOne(ctx, conn, aqlRemoveByKey, map[string]interface{}{"key": found.Key})
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) || isArangoNotFound(err) {
			err = apperror.NotFound("user", clerkID)
		}
		s.log.Errorf("Delete user %s: %v", clerkID, err)
		return model.User{}, err
	}
	return removed, nil
}

func (s *ArangoUserStore) AddCredits(ctx context.Context, key string, delta int) (model.User, error) {
	conn, err := s.connector.Get(ctx)
	if err != nil {
		s.log.Errorf("Add credits for %s: %v", key, err)
		return model.User{}, err
	}

	u, err := s.queryOne(ctx, conn, aqlAddCredits, map[string]interface{}{
		"key":   key,
		"delta": delta,
		"now":   time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			err = apperror.NotFound("user", key)
		}
		s.log.Errorf("Add credits for %s: %v", key, err)
		return model.User{}, err
	}
	return u, nil
}

func (s *ArangoUserStore) List(ctx context.Context, limit int) ([]model.User, error) {
	conn, err := s.connector.Get(ctx)
	if err != nil {
		s.log.Errorf("List users: %v", err)
		return nil, err
	}

	if limit <= 0 {
		limit = 100
	}

	cursor, err := conn.Database.Query(ctx, aqlListUsers, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"limit": limit},
	})
	if err != nil {
		s.log.Errorf("List users: %v", err)
		return nil, err
	}
	defer cursor.Close()

	users := []model.User{}
	for cursor.HasMore() {
		var u model.User
		if _, err := cursor.ReadDocument(ctx, &u); err != nil {
			s.log.Errorf("List users: %v", err)
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// queryOne runs an AQL query expected to yield at most one user document.
// The document is read straight into the plain model type; no wrapper
// round-trips.
func (s *ArangoUserStore) queryOne(ctx context.Context, conn *database.Connection, query string, bindVars map[string]interface{}) (model.User, error) {
	cursor, err := conn.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: bindVars,
	})
	if err != nil {
		return model.User{}, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return model.User{}, apperror.ErrNotFound
	}

	var u model.User
	if _, err := cursor.ReadDocument(ctx, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// isUniqueViolation reports whether err is the store's unique-index
// conflict (ArangoDB errorNum 1210).
func isUniqueViolation(err error) bool {
	var ae shared.ArangoError
	if errors.As(err, &ae) {
		return ae.Code == http.StatusConflict || ae.ErrorNum == 1210
	}
	return false
}

// isArangoNotFound reports whether err is the store's document-not-found
// error, as raised by REMOVE on a vanished key.
func isArangoNotFound(err error) bool {
	var ae shared.ArangoError
	return errors.As(err, &ae) && ae.Code == http.StatusNotFound
}
