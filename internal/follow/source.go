package follow

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/karswell/retrace/internal/body"
)

// ForceSource exposes the accelerations a controller applied to its body on
// the current tick. Values are zeroed at the top of every tick and are only
// meaningful until the owning controller ticks again; consumers must read
// them within the same tick.
type ForceSource interface {
	BodyID() body.ID
	AppliedAccel() mgl32.Vec3
	AppliedAngularAccel() mgl32.Vec3
}

// Registry maps body identity to the force source driving it. It is built
// once at the start of a record or playback session and never refreshed;
// controllers added or removed mid-session are not reflected.
type Registry struct {
	sources *orderedmap.OrderedMap[body.ID, ForceSource]
}

// BuildRegistry performs the one-shot discovery pass over the given sources.
// The first source claiming a body identity wins; later duplicates are
// ignored.
func BuildRegistry(sources []ForceSource) *Registry {
	m := orderedmap.NewOrderedMap[body.ID, ForceSource]()
	for _, s := range sources {
		if _, ok := m.Get(s.BodyID()); !ok {
			m.Set(s.BodyID(), s)
		}
	}
	return &Registry{sources: m}
}

// Lookup returns the force source registered for id, if any.
func (r *Registry) Lookup(id body.ID) (ForceSource, bool) {
	return r.sources.Get(id)
}

// Len returns the number of registered sources.
func (r *Registry) Len() int { return r.sources.Len() }
