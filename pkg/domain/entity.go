package domain

import "fmt"

// Entity is a generational handle into the host's entity collaborator. The
// generation disambiguates reused slots, so a stale handle held across a
// despawn never aliases a newer entity.
type Entity struct {
	Index uint32 `json:"index"`
	Gen   uint32 `json:"gen"`
}

func (e Entity) String() string {
	return fmt.Sprintf("%dv%d", e.Index, e.Gen)
}
