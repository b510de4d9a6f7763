package post

import "time"

// Tone selects the register of the generated post.
type Tone string

// Platform selects the social network the post is written for.
type Platform string

const (
	TonePromo   Tone = "promo"
	ToneNeutral Tone = "neutral"
	TonePlayful Tone = "playful"

	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"

	DefaultTone     = TonePromo
	DefaultPlatform = PlatformFacebook
)

// ImageSource records where the attached image came from.
type ImageSource string

const (
	ImageGenerated ImageSource = "generated"
	ImageHosted    ImageSource = "hosted"
	ImageScraped   ImageSource = "scraped"
	ImageNone      ImageSource = "none"
)

// GenerationRequest is the input of one generation.
type GenerationRequest struct {
	ProductURL string `json:"productUrl"`
	Tone       string `json:"tone,omitempty"`
	Platform   string `json:"platform,omitempty"`
}

// Draft is the text part of a post as parsed from model output.
type Draft struct {
	Title    string
	Text     string
	Hashtags []string
}

// Meta describes how a result was produced.
type Meta struct {
	Tone        Tone        `json:"tone"`
	Platform    Platform    `json:"platform"`
	GeneratedAt time.Time   `json:"generatedAt"`
	ImageSource ImageSource `json:"imageSource"`
	RequestID   string      `json:"requestId,omitempty"`
}

// GenerationResult is the finished post returned to the caller.
type GenerationResult struct {
	Title    string   `json:"title"`
	PostText string   `json:"postText"`
	Hashtags []string `json:"hashtags"`
	ImageURL *string  `json:"imageUrl"`
	Meta     Meta     `json:"meta"`
}

// PublishRequest is a post the user wants forwarded to the webhook.
type PublishRequest struct {
	ProductURL string         `json:"productUrl,omitempty"`
	Platform   string         `json:"platform,omitempty"`
	PostText   string         `json:"postText"`
	Title      *string        `json:"title,omitempty"`
	ImageURL   *string        `json:"imageUrl,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// PublishPayload is the JSON body sent to the webhook.
type PublishPayload struct {
	Platform   string         `json:"platform"`
	ProductURL string         `json:"productUrl,omitempty"`
	PostText   string         `json:"postText"`
	Title      *string        `json:"title"`
	ImageURL   *string        `json:"imageUrl"`
	Metadata   map[string]any `json:"metadata"`
	Source     string         `json:"source"`
	Timestamp  string         `json:"timestamp"`
}

// PublishResult is returned after a successful webhook call.
type PublishResult struct {
	Status          string `json:"status"`
	WebhookResponse any    `json:"makeResponse"`
}

// TimestampLayout is RFC 3339 in UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// NewPublishPayload applies defaults to a publish request.
func NewPublishPayload(req PublishRequest, source string, now time.Time) PublishPayload {
	platform := req.Platform
	if platform == "" {
		platform = string(DefaultPlatform)
	}
	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return PublishPayload{
		Platform:   platform,
		ProductURL: req.ProductURL,
		PostText:   req.PostText,
		Title:      req.Title,
		ImageURL:   req.ImageURL,
		Metadata:   metadata,
		Source:     source,
		Timestamp:  now.UTC().Format(TimestampLayout),
	}
}
