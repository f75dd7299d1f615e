package engine

import (
	"context"
	"errors"

	transport "chatsync/internal/infrastructure/transport/port"
	"chatsync/internal/pkg/sync/application/domain"
	"chatsync/internal/pkg/sync/application/state"
)

// dispatchLoop drains the event stream into the shared merge primitives.
// Transport events and server-acknowledged mutations go through the same
// store/registry operations, so arrival order does not matter: everything is
// id-based and idempotent.
func (e *Engine) dispatchLoop(ctx context.Context) {
	events := e.stream.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			e.Apply(ev)
		}
	}
}

// Apply reconciles one inbound event into local state. Errors are scoped to
// the event: a malformed or unmatched event is logged and dropped without
// touching any other conversation's state.
func (e *Engine) Apply(ev transport.Event) {
	switch ev := ev.(type) {
	case transport.NewMessage:
		e.applyNewMessage(ev.Message)
	case transport.MessageUpdated:
		e.applyMessageUpdated(ev.Message)
	case transport.MessageDeleted:
		e.applyMessageDeleted(ev.ConversationID, ev.MessageID)
	case transport.LikeToggled:
		e.applyLikeToggled(ev.MessageID, ev.User, ev.Liked)
	case transport.PinToggled:
		e.applyPinToggled(ev.MessageID, ev.Pinned)
	case transport.ConversationUpserted:
		e.registry.Upsert(ev.Conversation)
		e.notifier.Publish(state.Change{Kind: state.ChangeConversations, ConversationID: ev.Conversation.ID})
	case transport.ReadReceipt:
		e.registry.ApplyReadReceipt(ev.ConversationID, ev.UserID, ev.ReadAt)
		e.notifier.Publish(state.Change{Kind: state.ChangeConversations, ConversationID: ev.ConversationID})
	case transport.PresenceChanged:
		e.presence.Set(ev.UserID, ev.Online)
		e.notifier.Publish(state.Change{Kind: state.ChangePresence})
	case transport.TypingStarted:
		if ev.UserID != e.self.ID {
			e.typing.Start(ev.ConversationID, ev.UserID)
		}
	case transport.TypingStopped:
		e.typing.Stop(ev.ConversationID, ev.UserID)
	default:
		e.log.Warn().Msgf("unhandled event type %T", ev)
	}
}

func (e *Engine) applyNewMessage(m domain.Message) {
	if m.DeliveryState == "" {
		m.DeliveryState = domain.DeliverySent
	}

	// An event can reference a conversation the client has never listed;
	// register a stub so its summary and unread counter exist.
	if _, ok := e.registry.Get(m.ConversationID); !ok {
		e.registry.Upsert(domain.Conversation{
			ID:        m.ConversationID,
			CreatedAt: m.CreatedAt,
		})
	}

	inserted, newest := e.store.Insert(m)
	if !inserted {
		return
	}

	// A delivered message ends its sender's typing signal.
	e.typing.Stop(m.ConversationID, m.Sender.ID)

	if newest {
		e.registry.UpdateLastMessage(m)
		e.notifier.Publish(state.Change{Kind: state.ChangeConversations, ConversationID: m.ConversationID})
	}
	e.notifier.Publish(state.Change{Kind: state.ChangeMessages, ConversationID: m.ConversationID})
}

func (e *Engine) applyMessageUpdated(m domain.Message) {
	createdAt := m.CreatedAt
	patch := state.MessagePatch{
		Content:  m.Content,
		IsEdited: &m.IsEdited,
		IsPinned: &m.IsPinned,
		Likes:    m.Likes,
		ReplyTo:  m.ReplyTo,
	}
	if !createdAt.IsZero() {
		patch.CreatedAt = &createdAt
	}
	if m.IsDeleted {
		patch.IsDeleted = &m.IsDeleted
	}

	if _, err := e.store.ReconcileByID(m.ConversationID, m.ID, patch); err != nil {
		e.logReconcileMiss("message_updated", m.ID, err)
		return
	}
	e.notifier.Publish(state.Change{Kind: state.ChangeMessages, ConversationID: m.ConversationID})
}

func (e *Engine) applyMessageDeleted(conversationID, messageID int64) {
	if err := e.store.Tombstone(conversationID, messageID); err != nil {
		e.logReconcileMiss("message_deleted", messageID, err)
		return
	}
	e.notifier.Publish(state.Change{Kind: state.ChangeMessages, ConversationID: conversationID})
}

func (e *Engine) applyLikeToggled(messageID int64, user domain.User, liked bool) {
	if err := e.store.UpsertLike(messageID, user, liked); err != nil {
		e.logReconcileMiss("like_toggled", messageID, err)
		return
	}
	e.notifier.Publish(state.Change{Kind: state.ChangeMessages})
}

func (e *Engine) applyPinToggled(messageID int64, pinned bool) {
	if err := e.store.UpsertPin(messageID, pinned); err != nil {
		e.logReconcileMiss("pin_toggled", messageID, err)
		return
	}
	e.notifier.Publish(state.Change{Kind: state.ChangeMessages})
}

// logReconcileMiss records a reconcile target that stayed missing after the
// fallback scan. Non-fatal: the event is dropped, nothing else changes.
func (e *Engine) logReconcileMiss(event string, messageID int64, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		e.log.Warn().
			Str("event", event).
			Int64("message_id", messageID).
			Msg("reconcile target not loaded, event dropped")
		return
	}
	e.log.Error().Err(err).Str("event", event).Int64("message_id", messageID).Msg("event reconcile failed")
}
