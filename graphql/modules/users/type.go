// Package users defines the GraphQL types and queries for user records.
package users

import (
	"github.com/graphql-go/graphql"

	"github.com/imaginify/user-service/model"
)

// UserType represents one user record. Field names follow the stored
// document layout; the default resolver picks them up from the json tags,
// except the internal key whose stored name starts with an underscore.
var UserType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"key": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if u, ok := p.Source.(model.User); ok {
					return u.Key, nil
				}
				return nil, nil
			},
		},
		"clerk_id":       &graphql.Field{Type: graphql.String},
		"email":          &graphql.Field{Type: graphql.String},
		"username":       &graphql.Field{Type: graphql.String},
		"first_name":     &graphql.Field{Type: graphql.String},
		"last_name":      &graphql.Field{Type: graphql.String},
		"photo":          &graphql.Field{Type: graphql.String},
		"credit_balance": &graphql.Field{Type: graphql.Int},
		"created_at":     &graphql.Field{Type: graphql.DateTime},
		"updated_at":     &graphql.Field{Type: graphql.DateTime},
	},
})
