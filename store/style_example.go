package store

// StyleExample is a recorded fan-message/creator-response pair used as a
// style reference. A creator response may span several ordered messages.
type StyleExample struct {
	ID               string // UUID
	CreatorID        string // UUID
	FanMessage       string
	CreatorResponses []string
	CreatedTs        int64
}

// FindStyleExample specifies the conditions for finding style examples.
type FindStyleExample struct {
	ID        *string
	CreatorID *string

	// Pagination, newest first. Zero Limit means no limit.
	Limit  int
	Offset int
}

// DeleteStyleExample specifies the example to delete, scoped to its creator.
type DeleteStyleExample struct {
	ID        string
	CreatorID string
}
