// Package services implements the HTTP side of the video generation client.
//
// # Raw API
//
// [APIService] performs GET, JSON POST and form POST requests against the configured base URL
// and returns an [APIResponse] carrying status, headers, body and sniffed JSON. Request options
// such as [WithBearer] decorate individual requests.
//
// # Auth
//
// [AuthService] wraps the three auth endpoints. Login is an OAuth2 resource owner password grant,
// so it goes through [oauth2.Config.PasswordCredentialsToken] with client credentials omitted and
// parameters sent in the form body. Verify and Register are plain requests.
//
// # Videos
//
// [VideoService] submits prompts, lists the gallery and streams media. The list and media
// endpoints are called without a credential; generation requires a bearer token.
//
// # Error Handling
//
// Non-2xx responses become [*APIError], which unwraps to [shared.ErrAPIRequest] and carries the
// backend's "detail" field. [DetailMessage] turns any error into the message shown to a user,
// stringifying structured details (validation error arrays) as JSON.
package services
