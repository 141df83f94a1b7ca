package state

import (
	"time"

	"github.com/google/uuid"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	id, err := uuid.NewV7()
	if err != nil {
		// time ordering is nice to have, uniqueness is what matters
		id = uuid.New()
	}
	return &LocalEnv{
		start:   time.Now(),
		RunID:   id,
		Defines: make(map[string]string),
	}
}
