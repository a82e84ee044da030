// Package graphql exposes the cats API as a single GraphQL endpoint.
package graphql

import (
	gql "github.com/graphql-go/graphql"
)

var coordinatesType = gql.NewObject(gql.ObjectConfig{
	Name: "Coordinates",
	Fields: gql.Fields{
		"lat": &gql.Field{Type: gql.NewNonNull(gql.Float)},
		"lng": &gql.Field{Type: gql.NewNonNull(gql.Float)},
	},
})

var coordinatesInput = gql.NewInputObject(gql.InputObjectConfig{
	Name: "CoordinatesInput",
	Fields: gql.InputObjectConfigFieldMap{
		"lat": &gql.InputObjectFieldConfig{Type: gql.NewNonNull(gql.Float)},
		"lng": &gql.InputObjectFieldConfig{Type: gql.NewNonNull(gql.Float)},
	},
})

var userType = gql.NewObject(gql.ObjectConfig{
	Name: "User",
	Fields: gql.Fields{
		"id":         &gql.Field{Type: gql.NewNonNull(gql.ID)},
		"user_name":  &gql.Field{Type: gql.NewNonNull(gql.String)},
		"email":      &gql.Field{Type: gql.NewNonNull(gql.String)},
		"role":       &gql.Field{Type: gql.NewNonNull(gql.String)},
		"created_at": &gql.Field{Type: gql.DateTime},
		"updated_at": &gql.Field{Type: gql.DateTime},
	},
})

var tokenMessageType = gql.NewObject(gql.ObjectConfig{
	Name: "TokenMessage",
	Fields: gql.Fields{
		"token":   &gql.Field{Type: gql.String},
		"message": &gql.Field{Type: gql.NewNonNull(gql.String)},
		"user":    &gql.Field{Type: userType},
	},
})

var credentialsInput = gql.NewInputObject(gql.InputObjectConfig{
	Name: "Credentials",
	Fields: gql.InputObjectConfigFieldMap{
		"username": &gql.InputObjectFieldConfig{Type: gql.NewNonNull(gql.String), Description: "Email or user name"},
		"password": &gql.InputObjectFieldConfig{Type: gql.NewNonNull(gql.String)},
	},
})

var userInput = gql.NewInputObject(gql.InputObjectConfig{
	Name: "UserInput",
	Fields: gql.InputObjectConfigFieldMap{
		"user_name": &gql.InputObjectFieldConfig{Type: gql.NewNonNull(gql.String)},
		"email":     &gql.InputObjectFieldConfig{Type: gql.NewNonNull(gql.String)},
		"password":  &gql.InputObjectFieldConfig{Type: gql.NewNonNull(gql.String)},
	},
})

var userModifyInput = gql.NewInputObject(gql.InputObjectConfig{
	Name: "UserModify",
	Fields: gql.InputObjectConfigFieldMap{
		"user_name": &gql.InputObjectFieldConfig{Type: gql.String},
		"email":     &gql.InputObjectFieldConfig{Type: gql.String},
		"password":  &gql.InputObjectFieldConfig{Type: gql.String},
		"role":      &gql.InputObjectFieldConfig{Type: gql.String, Description: "Ignored outside updateUserAsAdmin"},
	},
})

// catPatchArgs are the optional fields accepted by the update mutations.
func catPatchArgs() gql.FieldConfigArgument {
	return gql.FieldConfigArgument{
		"id":          &gql.ArgumentConfig{Type: gql.NewNonNull(gql.ID)},
		"cat_name":    &gql.ArgumentConfig{Type: gql.String},
		"weight":      &gql.ArgumentConfig{Type: gql.Float},
		"birthdate":   &gql.ArgumentConfig{Type: gql.String},
		"filename":    &gql.ArgumentConfig{Type: gql.String},
		"coordinates": &gql.ArgumentConfig{Type: coordinatesInput},
		"owner":       &gql.ArgumentConfig{Type: gql.ID},
	}
}

func idArg() gql.FieldConfigArgument {
	return gql.FieldConfigArgument{
		"id": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.ID)},
	}
}

// NewSchema builds the executable schema around r.
func NewSchema(r *Resolver) (gql.Schema, error) {
	catType := gql.NewObject(gql.ObjectConfig{
		Name: "Cat",
		Fields: gql.Fields{
			"id":          &gql.Field{Type: gql.NewNonNull(gql.ID)},
			"cat_name":    &gql.Field{Type: gql.NewNonNull(gql.String)},
			"weight":      &gql.Field{Type: gql.NewNonNull(gql.Float)},
			"filename":    &gql.Field{Type: gql.NewNonNull(gql.String)},
			"birthdate":   &gql.Field{Type: gql.DateTime},
			"coordinates": &gql.Field{Type: gql.NewNonNull(coordinatesType)},
			"owner":       &gql.Field{Type: userType, Resolve: r.catOwner},
		},
	})
	catList := gql.NewList(catType)

	query := gql.NewObject(gql.ObjectConfig{
		Name: "Query",
		Fields: gql.Fields{
			"cats":    &gql.Field{Type: catList, Resolve: r.wrap(r.queryCats)},
			"catById": &gql.Field{Type: catType, Args: idArg(), Resolve: r.wrap(r.catByID)},
			"catsByOwner": &gql.Field{
				Type:    catList,
				Args:    gql.FieldConfigArgument{"ownerId": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.ID)}},
				Resolve: r.wrap(r.catsByOwner),
			},
			"catsByArea": &gql.Field{
				Type: catList,
				Args: gql.FieldConfigArgument{
					"topRight":   &gql.ArgumentConfig{Type: gql.NewNonNull(coordinatesInput)},
					"bottomLeft": &gql.ArgumentConfig{Type: gql.NewNonNull(coordinatesInput)},
				},
				Resolve: r.wrap(r.catsByArea),
			},
			"users":      &gql.Field{Type: gql.NewList(userType), Resolve: r.wrap(r.queryUsers)},
			"userById":   &gql.Field{Type: userType, Args: idArg(), Resolve: r.wrap(r.userByID)},
			"checkToken": &gql.Field{Type: tokenMessageType, Resolve: r.wrap(r.checkToken)},
		},
	})

	mutation := gql.NewObject(gql.ObjectConfig{
		Name: "Mutation",
		Fields: gql.Fields{
			"createCat": &gql.Field{
				Type: catType,
				Args: gql.FieldConfigArgument{
					"cat_name":    &gql.ArgumentConfig{Type: gql.NewNonNull(gql.String)},
					"weight":      &gql.ArgumentConfig{Type: gql.NewNonNull(gql.Float)},
					"birthdate":   &gql.ArgumentConfig{Type: gql.NewNonNull(gql.String)},
					"filename":    &gql.ArgumentConfig{Type: gql.NewNonNull(gql.String)},
					"coordinates": &gql.ArgumentConfig{Type: coordinatesInput},
				},
				Resolve: r.wrap(r.createCat),
			},
			"updateCat":        &gql.Field{Type: catType, Args: catPatchArgs(), Resolve: r.wrap(r.updateCat)},
			"deleteCat":        &gql.Field{Type: catType, Args: idArg(), Resolve: r.wrap(r.deleteCat)},
			"updateCatAsAdmin": &gql.Field{Type: catType, Args: catPatchArgs(), Resolve: r.wrap(r.updateCatAsAdmin)},
			"deleteCatAsAdmin": &gql.Field{Type: catType, Args: idArg(), Resolve: r.wrap(r.deleteCatAsAdmin)},
			"login": &gql.Field{
				Type:    tokenMessageType,
				Args:    gql.FieldConfigArgument{"credentials": &gql.ArgumentConfig{Type: gql.NewNonNull(credentialsInput)}},
				Resolve: r.wrap(r.login),
			},
			"register": &gql.Field{
				Type:    tokenMessageType,
				Args:    gql.FieldConfigArgument{"user": &gql.ArgumentConfig{Type: gql.NewNonNull(userInput)}},
				Resolve: r.wrap(r.register),
			},
			"updateUser": &gql.Field{
				Type:    tokenMessageType,
				Args:    gql.FieldConfigArgument{"user": &gql.ArgumentConfig{Type: gql.NewNonNull(userModifyInput)}},
				Resolve: r.wrap(r.updateUser),
			},
			"deleteUser": &gql.Field{Type: tokenMessageType, Resolve: r.wrap(r.deleteUser)},
			"updateUserAsAdmin": &gql.Field{
				Type: tokenMessageType,
				Args: gql.FieldConfigArgument{
					"id":   &gql.ArgumentConfig{Type: gql.NewNonNull(gql.ID)},
					"user": &gql.ArgumentConfig{Type: gql.NewNonNull(userModifyInput)},
				},
				Resolve: r.wrap(r.updateUserAsAdmin),
			},
			"deleteUserAsAdmin": &gql.Field{Type: tokenMessageType, Args: idArg(), Resolve: r.wrap(r.deleteUserAsAdmin)},
		},
	})

	return gql.NewSchema(gql.SchemaConfig{Query: query, Mutation: mutation})
}
