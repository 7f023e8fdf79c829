// Package models defines the core domain models for El Impostor.
//
// # Models
//
//   - Room: a game room joined via a 6-character code, owning its players and votes
//   - Player: a participant in a room, identified by display name within the room
//   - Vote: one ballot entry for a voting round, unique per (room, round, voter)
//   - Session: a persisted identity record backing a signed session token
//
// # Design Principles
//
//  1. **Server authority**: all state transitions happen server-side; clients
//     only observe snapshots and change events
//  2. **Set-based impostor model**: impostors are flagged per player rather
//     than referenced from the room, so multiple impostors are representable
//  3. **Avoid circular references**: use ID strings instead of pointers for
//     relationships
package models
