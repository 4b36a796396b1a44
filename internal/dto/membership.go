package dto

// BackfillRequest lists the students to backfill into the current week.
type BackfillRequest struct {
	StudentIDs []string `json:"studentIds" binding:"required,min=1,dive,required"`
}

// EntriesCreatedResponse reports how many entries were inserted.
type EntriesCreatedResponse struct {
	EntriesCreated int `json:"entriesCreated"`
}

// EntriesRemovedResponse reports how many entries were soft-deleted.
type EntriesRemovedResponse struct {
	EntriesRemoved int64 `json:"entriesRemoved"`
}
