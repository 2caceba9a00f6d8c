package users

import (
	"context"

	"gfde/internal/record"
	"gfde/internal/subgraph"
)

// Schema exposes the service as the users subgraph.
func Schema(svc *Service) *subgraph.Schema {
	return subgraph.NewSchema("users").
		Query("userById", func(ctx context.Context, args record.Document) (record.Value, error) {
			id, err := subgraph.StringArg(args, "id")
			if err != nil {
				return record.Value{}, err
			}
			return userValue(svc.LookupByID(ctx, id))
		}).
		Query("userByEmail", func(ctx context.Context, args record.Document) (record.Value, error) {
			email, err := subgraph.StringArg(args, "email")
			if err != nil {
				return record.Value{}, err
			}
			return userValue(svc.LookupByEmail(ctx, email))
		}).
		Mutation("upsertUser", func(ctx context.Context, args record.Document) (record.Value, error) {
			id, err := subgraph.StringArg(args, "id")
			if err != nil {
				return record.Value{}, err
			}
			email, err := subgraph.OptionalStringArg(args, "email")
			if err != nil {
				return record.Value{}, err
			}
			name, err := subgraph.OptionalStringArg(args, "name")
			if err != nil {
				return record.Value{}, err
			}
			return userValue(svc.Upsert(ctx, id, email, name))
		})
}

func userValue(u *User, err error) (record.Value, error) {
	if err != nil {
		return record.Value{}, err
	}
	if u == nil {
		return record.Null(), nil
	}
	return record.DocumentValue(u.Document()), nil
}
