package domain

// RoomID names a signaling room. Rooms are implicit: one exists exactly
// while it has at least one member.
type RoomID string
