// Package tasks runs long-lived video operations with real-time progress reporting.
//
// # Core Operations
//
//  1. [Engine.Watch] : poll the gallery until one video reaches a terminal status
//  2. [Engine.Download] : save one video's media as video_<id>.mp4
//  3. [Engine.DownloadAll] : save every completed video with a worker pool and rate limiter,
//     then write a manifest summarizing the run
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Implementation
//
// [Engine] depends on a [MediaClient] (services.VideoService) and a clockwork.Clock so polling
// can be driven by a fake clock in tests.
package tasks
