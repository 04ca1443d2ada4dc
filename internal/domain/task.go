package domain

// Task is a to-do attached to exactly one opportunity. The board only reads tasks.
type Task struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	OpportunityID int64      `json:"opportunityId"`
	Priority      string     `json:"priority"`
	Type          string     `json:"typeTask"`
	Status        string     `json:"statutTask"`
	Assignee      *User      `json:"assignedUser,omitempty"`
	Archived      bool       `json:"archived"`
	Deadline      *Timestamp `json:"deadline,omitempty"`
	CompletedAt   *Timestamp `json:"completedAt,omitempty"`
}

// IsCompleted reports whether the task carries a completion time.
func (t Task) IsCompleted() bool {
	return t.CompletedAt != nil && !t.CompletedAt.IsZero()
}
