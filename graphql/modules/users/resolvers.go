package users

import (
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/imaginify/user-service/internal/apperror"
	"github.com/imaginify/user-service/internal/services"
)

// ResolveUser resolves the user(clerkId) query. A missing user resolves to
// null rather than a query error.
func ResolveUser(store services.UserStore) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		clerkID, _ := p.Args["clerkId"].(string)

		user, err := store.GetByClerkID(p.Context, clerkID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return user, nil
	}
}

// ResolveUsers resolves the users(limit) query.
func ResolveUsers(store services.UserStore) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		limit, _ := p.Args["limit"].(int)
		return store.List(p.Context, limit)
	}
}
