package notifications

import (
	"context"
	"log/slog"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
)

// LogMessenger stands in for FCM in local development: every message is
// logged and reported as delivered.
type LogMessenger struct {
	Logger *slog.Logger
}

func (m LogMessenger) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

func (m LogMessenger) Send(_ context.Context, message *messaging.Message) (string, error) {
	id := uuid.NewString()
	title := ""
	if message.Notification != nil {
		title = message.Notification.Title
	}
	m.logger().Info("push (not delivered)", "id", id, "token", message.Token, "title", title, "data", message.Data)
	return id, nil
}

func (m LogMessenger) SendEachForMulticast(_ context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	resp := &messaging.BatchResponse{SuccessCount: len(message.Tokens)}
	for range message.Tokens {
		resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: true, MessageID: uuid.NewString()})
	}
	m.logger().Info("multicast push (not delivered)", "tokens", len(message.Tokens), "data", message.Data)
	return resp, nil
}
