package store

// User is the persisted account record. PasswordHash never leaves the server.
type User struct {
	ID           int32
	Email        string
	PasswordHash string
	CreatedTs    int64
	LastLoginTs  int64
}

// FindUser specifies the conditions for finding users.
type FindUser struct {
	ID    *int32
	Email *string
}

// UpdateUser specifies the fields to update. Nil fields keep their stored value.
type UpdateUser struct {
	ID           int32
	Email        *string
	PasswordHash *string
	LastLoginTs  *int64
}
