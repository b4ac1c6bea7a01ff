// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript and
// conversation history.
//
// # Key Types
//
//   - Conversation: displayed transcript + wire history + pending turn state
//   - Message: single transcript entry with role, content, timestamp
//   - HistoryEntry: one settled turn half as sent to the agent backend
//   - Role: message role enumeration (user, assistant)
//
// # Usage
//
// Drive a turn through its lifecycle:
//
//	conv := model.NewConversation()
//	id := conv.BeginTurn("show me Norfolk")
//	conv.SetPendingContent(id, "Zooming")
//	conv.SettleTurn(id, "Zooming to Norfolk now.")
//
// The transcript (Messages) and the wire history (History) are maintained
// together but serve different consumers: the renderer walks Messages, the
// backend request carries History.
package model
