// Package layout describes the static geometry of a shared space: its canvas,
// the obstacles avatars cannot walk through, and the zones they can interact with.
// A layout is loaded once and treated as read-only afterwards.
package layout

// ObstacleKind classifies an obstacle for rendering. Collision treats all kinds alike.
type ObstacleKind string

const (
	KindWall       ObstacleKind = "wall"
	KindTable      ObstacleKind = "table"
	KindChair      ObstacleKind = "chair"
	KindDecoration ObstacleKind = "decoration"
)

// AreaKind classifies an interactable zone.
type AreaKind string

const (
	KindMeetingRoom  AreaKind = "meeting_room"
	KindPresentation AreaKind = "presentation"
	KindWhiteboard   AreaKind = "whiteboard"
)

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width" jsonschema:"minimum=0"`
	Height float64 `json:"height" jsonschema:"minimum=0"`
}

// Center returns the geometric center of the rectangle.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

type Obstacle struct {
	ID string `json:"id"`
	Rect
	Kind  ObstacleKind `json:"type" jsonschema:"enum=wall,enum=table,enum=chair,enum=decoration"`
	Color string       `json:"color"`
}

// InteractableArea is a zone players can approach. CurrentParticipants is
// informational only; nothing enforces MaxParticipants.
type InteractableArea struct {
	ID string `json:"id"`
	Rect
	Kind                AreaKind `json:"type" jsonschema:"enum=meeting_room,enum=presentation,enum=whiteboard"`
	Label               string   `json:"label"`
	MaxParticipants     int      `json:"maxParticipants" jsonschema:"minimum=0"`
	CurrentParticipants []string `json:"currentParticipants"`
}

// SpaceLayout is the full description of one virtual space.
type SpaceLayout struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Width             float64            `json:"width" jsonschema:"minimum=0"`
	Height            float64            `json:"height" jsonschema:"minimum=0"`
	BackgroundColor   string             `json:"backgroundColor"`
	Obstacles         []Obstacle         `json:"obstacles"`
	InteractableAreas []InteractableArea `json:"interactableAreas"`
}
