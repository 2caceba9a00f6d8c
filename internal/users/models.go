package users

import "gfde/internal/record"

// RecordType is the record store type users are kept under.
const RecordType = "User"

// User is a stored user.
type User struct {
	ID      string
	Email   string
	Name    string
	Version uint64
}

// Document renders the user as it is stored and served: id, email, name and
// the version under _ver once it has been written.
func (u *User) Document() record.Document {
	d := record.NewDocument(
		record.Field{Name: "id", Value: record.String(u.ID)},
		record.Field{Name: "email", Value: record.String(u.Email)},
		record.Field{Name: "name", Value: record.String(u.Name)},
	)
	if u.Version > 0 {
		d = record.WithVersion(d, u.Version)
	}
	return d
}

func fromRecord(rec record.Record) *User {
	u := &User{ID: rec.ID, Version: rec.Version}
	u.Email, _ = rec.Payload.GetString("email")
	u.Name, _ = rec.Payload.GetString("name")
	if id, ok := rec.Payload.GetString("id"); ok && id != "" {
		u.ID = id
	}
	return u
}
