// Package todo keeps todo items in a Cassandra table.
package todo

import "fmt"
import "time"

import "github.com/google/uuid"

// Todo is a task belonging to a user.
type Todo struct {
	ID        uuid.UUID `json:"id"`
	Task      string    `json:"task"`
	Completed bool      `json:"completed"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// String renders the todo as a single line, e.g.
//
//	9b2c...e1. Watch a classic movie (Completed: false, User: 4)
func (t *Todo) String() string {
	return fmt.Sprintf("%s. %s (Completed: %t, User: %d)", t.ID, t.Task, t.Completed, t.UserID)
}
