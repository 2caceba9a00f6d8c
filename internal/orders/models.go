package orders

import (
	"time"

	"gfde/internal/record"
)

// RecordType is the record store type orders are kept under.
const RecordType = "Order"

// Order is a stored order. CreatedAt is kept as an RFC 3339 string.
type Order struct {
	ID        string
	UserID    string
	Total     float64
	CreatedAt string
	Version   uint64
}

// Document renders the order as it is stored and served.
func (o *Order) Document() record.Document {
	d := record.NewDocument(
		record.Field{Name: "id", Value: record.String(o.ID)},
		record.Field{Name: "userId", Value: record.String(o.UserID)},
		record.Field{Name: "total", Value: record.Number(o.Total)},
		record.Field{Name: "createdAt", Value: record.String(o.CreatedAt)},
	)
	if o.Version > 0 {
		d = record.WithVersion(d, o.Version)
	}
	return d
}

func fromRecord(rec record.Record) *Order {
	o := &Order{ID: rec.ID, Version: rec.Version}
	o.UserID, _ = rec.Payload.GetString("userId")
	o.CreatedAt, _ = rec.Payload.GetString("createdAt")
	if v, ok := rec.Payload.Get("total"); ok {
		o.Total, _ = v.AsNumber()
	}
	return o
}

func formatCreatedAt(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
