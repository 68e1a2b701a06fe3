// Package graphql assembles the GraphQL schema from the per-entity
// modules.
package graphql

import (
	gql "github.com/graphql-go/graphql"

	"github.com/imaginify/user-service/graphql/modules/users"
	"github.com/imaginify/user-service/internal/services"
)

// CreateSchema builds the executable schema over the given store.
func CreateSchema(store services.UserStore) (gql.Schema, error) {
	rootQuery := gql.NewObject(gql.ObjectConfig{
		Name:   "Query",
		Fields: users.QueryFields(store),
	})

	return gql.NewSchema(gql.SchemaConfig{
		Query: rootQuery,
	})
}
