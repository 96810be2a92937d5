// package models defines the data model for the video generation client
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// VideoStatus is the lifecycle state of a generation job.
type VideoStatus string

const (
	StatusPending    VideoStatus = "pending"
	StatusProcessing VideoStatus = "processing"
	StatusCompleted  VideoStatus = "completed"
	StatusFailed     VideoStatus = "failed"
)

// Terminal reports whether the job will not change status again.
func (s VideoStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Known reports whether s is one of the four documented states.
func (s VideoStatus) Known() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

func (s VideoStatus) String() string { return string(s) }

// timestampLayouts are tried in order when decoding created_at.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Timestamp is a created_at value. The backend renders naive datetimes with str(), so several
// layouts are accepted; the original text is kept for round trips.
type Timestamp struct {
	time.Time
	raw string
}

// ParseTimestamp parses s using the layouts the backend is known to emit.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t, raw: s}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("%w: unrecognized timestamp %q", ErrInvalidTimestamp, s)
}

// ErrInvalidTimestamp is returned for created_at values in no known layout.
var ErrInvalidTimestamp = fmt.Errorf("invalid timestamp")

// LenientTimestamp is [ParseTimestamp] that never fails: text in an unknown layout is
// kept as is with a zero Time.
func LenientTimestamp(s string) Timestamp {
	if ts, err := ParseTimestamp(s); err == nil {
		return ts
	}
	return Timestamp{raw: s}
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	*t = LenientTimestamp(s)
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// String returns the value as received, or RFC 3339 for timestamps built in code.
func (t Timestamp) String() string {
	if t.raw != "" {
		return t.raw
	}
	return t.Time.Format(time.RFC3339)
}

// Video is a generation job as reported by the backend.
type Video struct {
	VideoID   string      `json:"video_id"`
	Status    VideoStatus `json:"status"`
	Message   *string     `json:"message,omitempty"`
	CreatedAt *Timestamp  `json:"created_at,omitempty"`
	VideoPath *string     `json:"video_path,omitempty"`
}

// Ready reports whether the media can be streamed.
func (v Video) Ready() bool {
	return v.Status == StatusCompleted && v.VideoPath != nil && *v.VideoPath != ""
}

// MessageOr returns the message or fallback when absent.
func (v Video) MessageOr(fallback string) string {
	if v.Message == nil || *v.Message == "" {
		return fallback
	}
	return *v.Message
}

// CreatedAtOr formats created_at with layout, or returns fallback when absent.
// Unparsed values are returned as received.
func (v Video) CreatedAtOr(layout, fallback string) string {
	if v.CreatedAt == nil {
		return fallback
	}
	if v.CreatedAt.IsZero() {
		return v.CreatedAt.String()
	}
	return v.CreatedAt.Format(layout)
}

// User is the identity the client knows about, which is only the username submitted at login.
type User struct {
	Username string `json:"username"`
}

// Credentials are the username/password pair sent to the token and register endpoints.
type Credentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// GenerateRequest is the body of POST /generate-video.
type GenerateRequest struct {
	Prompt  string `json:"prompt" validate:"required"`
	IsStory bool   `json:"is_story"`
}

// Result is the outcome of a manager operation. Failures carry a human-readable Error and are
// never returned as Go errors to the view layer.
type Result struct {
	Success bool
	Error   string
	Video   *Video
}

// Ok returns a successful [Result].
func Ok() Result { return Result{Success: true} }

// Fail returns a failed [Result] with msg.
func Fail(msg string) Result { return Result{Success: false, Error: msg} }

// Err converts a failed result into an error wrapping base, or nil on success.
func (r Result) Err(base error) error {
	if r.Success {
		return nil
	}
	return fmt.Errorf("%w: %s", base, r.Error)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks required fields. Whitespace-only usernames are rejected; passwords are
// checked verbatim.
func (c Credentials) Validate() error {
	trimmed := c
	trimmed.Username = strings.TrimSpace(c.Username)
	return describe(validate.Struct(trimmed))
}

// Validate rejects blank prompts.
func (g GenerateRequest) Validate() error {
	trimmed := g
	trimmed.Prompt = strings.TrimSpace(g.Prompt)
	return describe(validate.Struct(trimmed))
}

// describe turns validator errors into a short "<field> is required" message.
func describe(err error) error {
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	verb := "is"
	if len(fields) > 1 {
		verb = "are"
	}
	return fmt.Errorf("%s %s required", strings.Join(fields, " and "), verb)
}
