// package services defines typed clients for the video generation backend's HTTP API
package services

// Backend paths. The base URL comes from configuration.
const (
	PathVerify      = "/auth/verify"
	PathToken       = "/auth/token"
	PathRegister    = "/auth/register"
	PathGenerate    = "/generate-video"
	PathListVideos  = "/my-videos"
	PathPublicVideo = "/public-video/"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000"
