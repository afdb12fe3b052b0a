package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"instagram-relay/domain/dto"
	"instagram-relay/domain/model"
)

// ConversationID derives a stable id for an (account, counterpart) pair. The
// pair is sorted first so both message directions map to the same
// conversation.
func ConversationID(accountID, counterpartID string) string {
	a, b := accountID, counterpartID
	if b < a {
		a, b = b, a
	}
	sum := sha256.Sum256([]byte(a + ":" + b))
	return hex.EncodeToString(sum[:16])
}

// ClassifyNotification flattens a raw webhook batch into typed events. Every
// entry item yields exactly one event; payloads that match nothing become
// EventUnknown so the downstream still sees them.
func ClassifyNotification(n *dto.Notification, receivedAt time.Time) []*model.WebhookEvent {
	var events []*model.WebhookEvent
	for _, entry := range n.Entry {
		for i := range entry.Messaging {
			events = append(events, classifyMessaging(entry.ID, &entry.Messaging[i], receivedAt))
		}
		for i := range entry.Changes {
			events = append(events, classifyChange(entry.ID, entry.Time, &entry.Changes[i], receivedAt))
		}
	}
	return events
}

func classifyMessaging(accountID string, m *dto.Messaging, receivedAt time.Time) *model.WebhookEvent {
	ev := &model.WebhookEvent{
		AccountID:         accountID,
		ConversationID:    ConversationID(accountID, m.Sender.ID),
		PlatformTimestamp: m.Timestamp,
		ReceivedAt:        receivedAt,
	}

	switch {
	case m.Message != nil:
		ev.Type = model.EventMessageReceived
		ev.Message = classifyMessage(m)
	case m.Reaction != nil:
		ev.Type = model.EventReaction
		ev.Reaction = &model.ReactionEvent{
			SenderID:    m.Sender.ID,
			RecipientID: m.Recipient.ID,
			MessageID:   m.Reaction.MID,
			Action:      m.Reaction.Action,
			Emoji:       m.Reaction.Emoji,
			ReactionTag: m.Reaction.Reaction,
		}
	case m.Read != nil:
		ev.Type = model.EventReadReceipt
		ev.ReadReceipt = &model.ReadReceiptEvent{
			SenderID:    m.Sender.ID,
			RecipientID: m.Recipient.ID,
			MessageID:   m.Read.MID,
		}
	case m.Postback != nil:
		ev.Type = model.EventPostback
		ev.Postback = &model.PostbackEvent{
			SenderID:    m.Sender.ID,
			RecipientID: m.Recipient.ID,
			Title:       m.Postback.Title,
			Payload:     m.Postback.Payload,
		}
	default:
		ev.Type = model.EventUnknown
		raw, _ := json.Marshal(m)
		ev.Unknown = &model.UnknownEvent{Field: "messaging", Raw: raw}
	}
	return ev
}

// classifyMessage assigns the message kind by precedence: quick reply, then
// referral, then story reply, then attachment type, then plain text.
func classifyMessage(m *dto.Messaging) *model.MessageEvent {
	msg := m.Message
	out := &model.MessageEvent{
		SenderID:    m.Sender.ID,
		RecipientID: m.Recipient.ID,
		MessageID:   msg.MID,
		Text:        msg.Text,
		IsEcho:      msg.IsEcho,
	}

	switch {
	case msg.QuickReply != nil:
		out.Kind = model.MessageQuickReply
		out.QuickReply = msg.QuickReply.Payload
	case msg.Referral != nil:
		out.Kind = model.MessageReferral
		out.ReferralRef = msg.Referral.Ref
	case msg.ReplyTo != nil && msg.ReplyTo.Story != nil:
		out.Kind = model.MessageStoryReply
		out.StoryID = msg.ReplyTo.Story.ID
		out.StoryURL = msg.ReplyTo.Story.URL
	case len(msg.Attachments) > 0:
		att := msg.Attachments[0]
		out.AttachmentURL = att.Payload.URL
		switch {
		case att.Payload.StickerID != 0:
			out.Kind = model.MessageSticker
		case att.Type == "video":
			out.Kind = model.MessageVideo
		case att.Type == "audio":
			out.Kind = model.MessageAudio
		default:
			out.Kind = model.MessageImage
		}
	default:
		out.Kind = model.MessageText
	}
	return out
}

func classifyChange(accountID string, entryTime int64, ch *dto.Change, receivedAt time.Time) *model.WebhookEvent {
	ev := &model.WebhookEvent{
		AccountID:         accountID,
		PlatformTimestamp: entryTime,
		ReceivedAt:        receivedAt,
	}

	switch ch.Field {
	case "comments", "live_comments":
		var v dto.CommentValue
		if err := json.Unmarshal(ch.Value, &v); err != nil {
			break
		}
		ev.Type = model.EventComment
		ev.Comment = &model.CommentEvent{
			CommentID: v.ID,
			Text:      v.Text,
			Live:      ch.Field == "live_comments",
		}
		if v.From != nil {
			ev.Comment.FromID = v.From.ID
			ev.Comment.FromName = v.From.Username
			ev.ConversationID = ConversationID(accountID, v.From.ID)
		}
		if v.Media != nil {
			ev.Comment.MediaID = v.Media.ID
		} else {
			ev.Comment.MediaID = v.MediaID
		}
		return ev
	case "mentions":
		var v dto.MentionValue
		if err := json.Unmarshal(ch.Value, &v); err != nil {
			break
		}
		ev.Type = model.EventMention
		ev.Mention = &model.MentionEvent{MediaID: v.MediaID, CommentID: v.CommentID}
		return ev
	case "story_insights":
		var v dto.StoryInsightValue
		if err := json.Unmarshal(ch.Value, &v); err != nil {
			break
		}
		ev.Type = model.EventStoryInsight
		ev.StoryInsight = &model.StoryInsightEvent{
			MediaID:     v.MediaID,
			Impressions: v.Impressions,
			Reach:       v.Reach,
		}
		return ev
	}

	ev.Type = model.EventUnknown
	ev.Unknown = &model.UnknownEvent{Field: ch.Field, Raw: ch.Value}
	return ev
}
