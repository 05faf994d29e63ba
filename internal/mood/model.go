package mood

import "time"

// Mood is one entry in a user's mood history. At most one entry per owner
// is active at any time; the rest are historical.
type Mood struct {
	OwnerUsername string    `json:"username"`
	Mood          string    `json:"mood"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// History is the aggregate read of a user's moods. InactiveMoods excludes
// the currently active entry.
type History struct {
	ActiveMood    Mood   `json:"active_mood"`
	InactiveMoods []Mood `json:"inactive_moods"`
}
