/*
Package journal keeps a MySQL log of the calls made to the parcel service.
*/
package journal

import (
	"context"
	"time"
)

// Repository describes the persistence of journal entries
type Repository interface {
	Log(ctx context.Context, e Entry) error
	List(ctx context.Context, operation string, limit int) ([]Entry, error)
	Close()
}

//Entry represents one service call
type Entry struct {
	ID        int64         `json:"id" db:"id"`
	Operation string        `json:"operation" db:"operation"`
	Reference string        `json:"reference" db:"reference"`
	Success   bool          `json:"success" db:"success"`
	HTTPCode  int           `json:"http_code" db:"http_code"`
	Message   string        `json:"message" db:"message"`
	Elapsed   time.Duration `json:"elapsed" db:"elapsed"`
	Created   time.Time     `json:"created" db:"created"`
}
