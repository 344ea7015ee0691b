package layout

const (
	CanvasWidth  = 800.0
	CanvasHeight = 600.0
	// MinCanvasSize is the avatar diameter; a smaller canvas cannot hold one.
	MinCanvasSize = 40.0
)

const (
	wallColor   = "#64748b"
	shellColor  = "#e2e8f0"
	tableColor  = "#8b4513"
	chairColor  = "#6b7280"
	officeFloor = "#f8fafc"
)

func obstacle(id string, x, y, w, h float64, kind ObstacleKind, color string) Obstacle {
	return Obstacle{ID: id, Rect: Rect{X: x, Y: y, Width: w, Height: h}, Kind: kind, Color: color}
}

// Default returns a fresh copy of the built-in "Main Office" space.
func Default() *SpaceLayout {
	return &SpaceLayout{
		ID:              "default",
		Name:            "Main Office",
		Width:           CanvasWidth,
		Height:          CanvasHeight,
		BackgroundColor: officeFloor,
		Obstacles: []Obstacle{
			// office walls
			obstacle("wall1", 100, 100, 150, 20, KindWall, wallColor),
			obstacle("wall2", 300, 150, 20, 100, KindWall, wallColor),
			obstacle("wall3", 500, 200, 120, 20, KindWall, wallColor),

			// meeting room shells
			obstacle("room1", 50, 50, 80, 80, KindWall, shellColor),
			obstacle("room2", 600, 100, 100, 80, KindWall, shellColor),

			obstacle("table1", 200, 300, 80, 40, KindTable, tableColor),
			obstacle("table2", 400, 350, 80, 40, KindTable, tableColor),
			obstacle("table3", 150, 450, 60, 30, KindTable, tableColor),

			obstacle("chair1", 220, 280, 20, 20, KindChair, chairColor),
			obstacle("chair2", 240, 280, 20, 20, KindChair, chairColor),
			obstacle("chair3", 420, 330, 20, 20, KindChair, chairColor),
			obstacle("chair4", 440, 330, 20, 20, KindChair, chairColor),
		},
		InteractableAreas: []InteractableArea{
			{
				ID:                  "meeting1",
				Rect:                Rect{X: 50, Y: 50, Width: 80, Height: 80},
				Kind:                KindMeetingRoom,
				Label:               "Meeting Room A",
				MaxParticipants:     6,
				CurrentParticipants: []string{},
			},
			{
				ID:                  "meeting2",
				Rect:                Rect{X: 600, Y: 100, Width: 100, Height: 80},
				Kind:                KindMeetingRoom,
				Label:               "Meeting Room B",
				MaxParticipants:     8,
				CurrentParticipants: []string{},
			},
			{
				ID:                  "whiteboard1",
				Rect:                Rect{X: 350, Y: 50, Width: 100, Height: 20},
				Kind:                KindWhiteboard,
				Label:               "Brainstorm Board",
				MaxParticipants:     10,
				CurrentParticipants: []string{},
			},
		},
	}
}
