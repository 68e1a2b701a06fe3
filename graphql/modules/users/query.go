package users

import (
	"github.com/graphql-go/graphql"

	"github.com/imaginify/user-service/internal/services"
)

// QueryFields returns the root query fields contributed by this module.
func QueryFields(store services.UserStore) graphql.Fields {
	return graphql.Fields{
		"user": &graphql.Field{
			Type:        UserType,
			Description: "Look a user up by external identity id",
			Args: graphql.FieldConfigArgument{
				"clerkId": &graphql.ArgumentConfig{
					Type: graphql.NewNonNull(graphql.String),
				},
			},
			Resolve: ResolveUser(store),
		},
		"users": &graphql.Field{
			Type:        graphql.NewList(UserType),
			Description: "List users, newest first",
			Args: graphql.FieldConfigArgument{
				"limit": &graphql.ArgumentConfig{
					Type:         graphql.Int,
					DefaultValue: 100,
				},
			},
			Resolve: ResolveUsers(store),
		},
	}
}
