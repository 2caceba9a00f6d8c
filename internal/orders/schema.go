package orders

import (
	"context"

	"gfde/internal/record"
	"gfde/internal/subgraph"
)

// Schema exposes the service as the orders subgraph.
func Schema(svc *Service) *subgraph.Schema {
	return subgraph.NewSchema("orders").
		Query("ordersByUser", func(ctx context.Context, args record.Document) (record.Value, error) {
			userID, err := subgraph.StringArg(args, "userId")
			if err != nil {
				return record.Value{}, err
			}
			first, err := subgraph.IntArg(args, "first", DefaultListCount)
			if err != nil {
				return record.Value{}, err
			}
			list, err := svc.ListByUser(ctx, userID, first)
			if err != nil {
				return record.Value{}, err
			}
			items := make([]record.Value, 0, len(list))
			for _, o := range list {
				items = append(items, record.DocumentValue(o.Document()))
			}
			return record.List(items...), nil
		}).
		Mutation("createOrder", func(ctx context.Context, args record.Document) (record.Value, error) {
			id, err := subgraph.StringArg(args, "id")
			if err != nil {
				return record.Value{}, err
			}
			userID, err := subgraph.StringArg(args, "userId")
			if err != nil {
				return record.Value{}, err
			}
			total, err := subgraph.NumberArg(args, "total")
			if err != nil {
				return record.Value{}, err
			}
			o, err := svc.Create(ctx, id, userID, total)
			if err != nil {
				return record.Value{}, err
			}
			return record.DocumentValue(o.Document()), nil
		})
}
