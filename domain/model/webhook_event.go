package model

import "time"

// EventType tags a classified webhook event.
type EventType string

const (
	EventMessageReceived EventType = "message_received"
	EventReaction        EventType = "reaction"
	EventReadReceipt     EventType = "read_receipt"
	EventPostback        EventType = "postback"
	EventComment         EventType = "comment"
	EventMention         EventType = "mention"
	EventStoryInsight    EventType = "story_insight"
	EventUnknown         EventType = "unknown"
)

// MessageKind is the sub-classification of a received message. Mutually
// exclusive, assigned by precedence: quick reply > referral > story reply >
// attachment type > text.
type MessageKind string

const (
	MessageQuickReply MessageKind = "quick_reply"
	MessageReferral   MessageKind = "referral"
	MessageStoryReply MessageKind = "story_reply"
	MessageImage      MessageKind = "image"
	MessageVideo      MessageKind = "video"
	MessageAudio      MessageKind = "audio"
	MessageSticker    MessageKind = "sticker"
	MessageText       MessageKind = "text"
)

// WebhookEvent is one classified inbound notification. Exactly one of the
// variant pointers is set, selected by Type; Unknown events instead carry the
// raw field name and payload so nothing is silently dropped.
type WebhookEvent struct {
	Type              EventType `json:"type"`
	AccountID         string    `json:"account_id"`
	ConversationID    string    `json:"conversation_id,omitempty"`
	PlatformTimestamp int64     `json:"platform_timestamp"`
	ReceivedAt        time.Time `json:"received_at"`

	Message      *MessageEvent      `json:"message,omitempty"`
	Reaction     *ReactionEvent     `json:"reaction,omitempty"`
	ReadReceipt  *ReadReceiptEvent  `json:"read_receipt,omitempty"`
	Postback     *PostbackEvent     `json:"postback,omitempty"`
	Comment      *CommentEvent      `json:"comment,omitempty"`
	Mention      *MentionEvent      `json:"mention,omitempty"`
	StoryInsight *StoryInsightEvent `json:"story_insight,omitempty"`
	Unknown      *UnknownEvent      `json:"unknown,omitempty"`
}

type MessageEvent struct {
	Kind          MessageKind `json:"kind"`
	SenderID      string      `json:"sender_id"`
	RecipientID   string      `json:"recipient_id"`
	MessageID     string      `json:"message_id"`
	Text          string      `json:"text,omitempty"`
	QuickReply    string      `json:"quick_reply,omitempty"`
	ReferralRef   string      `json:"referral_ref,omitempty"`
	StoryID       string      `json:"story_id,omitempty"`
	StoryURL      string      `json:"story_url,omitempty"`
	AttachmentURL string      `json:"attachment_url,omitempty"`
	IsEcho        bool        `json:"is_echo,omitempty"`
}

type ReactionEvent struct {
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
	Action      string `json:"action"`
	Emoji       string `json:"emoji,omitempty"`
	ReactionTag string `json:"reaction,omitempty"`
}

type ReadReceiptEvent struct {
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
}

type PostbackEvent struct {
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	Title       string `json:"title,omitempty"`
	Payload     string `json:"payload,omitempty"`
}

type CommentEvent struct {
	CommentID string `json:"comment_id"`
	MediaID   string `json:"media_id,omitempty"`
	FromID    string `json:"from_id,omitempty"`
	FromName  string `json:"from_name,omitempty"`
	Text      string `json:"text,omitempty"`
	Live      bool   `json:"live,omitempty"`
}

type MentionEvent struct {
	MediaID   string `json:"media_id,omitempty"`
	CommentID string `json:"comment_id,omitempty"`
}

type StoryInsightEvent struct {
	MediaID     string `json:"media_id,omitempty"`
	Impressions int64  `json:"impressions,omitempty"`
	Reach       int64  `json:"reach,omitempty"`
}

type UnknownEvent struct {
	Field string `json:"field"`
	Raw   []byte `json:"raw,omitempty"`
}
