package store

// Creator is a platform persona whose messaging style is modeled for
// AI-assisted reply suggestions. Deactivation is a soft delete: inactive
// creators drop out of listings but stay retrievable by id.
type Creator struct {
	ID          string // UUID
	Name        string
	Description string
	AvatarURL   string
	Active      bool
	CreatedTs   int64
	UpdatedTs   int64
}

// FindCreator specifies the conditions for finding creators.
type FindCreator struct {
	ID     *string
	Active *bool

	// Pagination. Zero Limit means no limit.
	Limit  int
	Offset int
}

// UpdateCreator specifies the fields to update. Nil fields keep their stored value.
type UpdateCreator struct {
	ID          string
	Name        *string
	Description *string
	AvatarURL   *string
	Active      *bool
}

// DeleteCreator specifies the creator to delete. Style, examples and stored
// conversations cascade at the schema level.
type DeleteCreator struct {
	ID string
}
