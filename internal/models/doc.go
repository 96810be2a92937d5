// Package models defines the records exchanged with the video generation backend and the
// value types the session and gallery managers hand to the view layer.
//
//   - [Video] : server-owned description of a generation job and its media
//   - [VideoStatus] : job lifecycle (pending, processing, completed, failed)
//   - [Timestamp] : created_at in either RFC 3339 or the backend's "YYYY-MM-DD HH:MM:SS" form
//   - [User] : identity known to the client (only the submitted username)
//   - [Credentials], [GenerateRequest] : validated inputs; invalid values never reach the network
//   - [Result] : the structured outcome every manager operation returns instead of an error
//
// The client never mutates a [Video]. It only prepends new records and replaces the list on refresh.
package models
