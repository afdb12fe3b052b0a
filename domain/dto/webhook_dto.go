package dto

import "encoding/json"

// Notification is the raw webhook batch the platform delivers.
type Notification struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one account's slice of a notification batch. Messaging carries
// direct-message events; Changes carries field-level subscriptions
// (comments, mentions, story insights).
type Entry struct {
	ID        string      `json:"id"`
	Time      int64       `json:"time"`
	Messaging []Messaging `json:"messaging,omitempty"`
	Changes   []Change    `json:"changes,omitempty"`
}

type Messaging struct {
	Sender    Party     `json:"sender"`
	Recipient Party     `json:"recipient"`
	Timestamp int64     `json:"timestamp"`
	Message   *Message  `json:"message,omitempty"`
	Reaction  *Reaction `json:"reaction,omitempty"`
	Read      *Read     `json:"read,omitempty"`
	Postback  *Postback `json:"postback,omitempty"`
}

type Party struct {
	ID string `json:"id"`
}

type Message struct {
	MID         string       `json:"mid"`
	Text        string       `json:"text,omitempty"`
	IsEcho      bool         `json:"is_echo,omitempty"`
	QuickReply  *QuickReply  `json:"quick_reply,omitempty"`
	ReplyTo     *ReplyTo     `json:"reply_to,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Referral    *Referral    `json:"referral,omitempty"`
}

type QuickReply struct {
	Payload string `json:"payload"`
}

type ReplyTo struct {
	MID   string `json:"mid,omitempty"`
	Story *Story `json:"story,omitempty"`
}

type Story struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Attachment struct {
	Type    string            `json:"type"`
	Payload AttachmentPayload `json:"payload"`
}

type AttachmentPayload struct {
	URL       string `json:"url,omitempty"`
	StickerID int64  `json:"sticker_id,omitempty"`
}

type Referral struct {
	Ref    string `json:"ref"`
	Source string `json:"source,omitempty"`
	Type   string `json:"type,omitempty"`
}

type Reaction struct {
	MID      string `json:"mid"`
	Action   string `json:"action"`
	Reaction string `json:"reaction,omitempty"`
	Emoji    string `json:"emoji,omitempty"`
}

type Read struct {
	MID string `json:"mid"`
}

type Postback struct {
	MID     string `json:"mid,omitempty"`
	Title   string `json:"title,omitempty"`
	Payload string `json:"payload,omitempty"`
}

// Change is a field-level subscription update; Value is kept raw because each
// field has its own shape and unknown fields must survive untouched.
type Change struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

// CommentValue is the value shape for comments and live_comments fields.
type CommentValue struct {
	ID      string       `json:"id"`
	Text    string       `json:"text,omitempty"`
	From    *CommentFrom `json:"from,omitempty"`
	Media   *CommentRef  `json:"media,omitempty"`
	MediaID string       `json:"media_id,omitempty"`
}

type CommentFrom struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

type CommentRef struct {
	ID string `json:"id"`
}

// MentionValue is the value shape for the mentions field.
type MentionValue struct {
	MediaID   string `json:"media_id,omitempty"`
	CommentID string `json:"comment_id,omitempty"`
}

// StoryInsightValue is the value shape for the story_insights field.
type StoryInsightValue struct {
	MediaID     string `json:"media_id,omitempty"`
	Impressions int64  `json:"impressions,omitempty"`
	Reach       int64  `json:"reach,omitempty"`
}
