package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/anonto42/post-app/backend/internal/models"
	"github.com/anonto42/post-app/backend/internal/repositories"
	"golang.org/x/sync/errgroup"
)

// MaxMulticastTokens is the most tokens FCM accepts in one multicast request.
const MaxMulticastTokens = 500

const (
	likeTitle       = "New Like! ❤️"
	moderationTitle = "Contenido Moderado"
	fallbackName    = "Someone"
)

// Messenger is the subset of the FCM client used for push delivery.
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// Service delivers push notifications and records in-app inbox entries.
type Service struct {
	messenger Messenger
	tokens    repositories.TokenRepository
	inbox     repositories.NotificationRepository
	users     repositories.UserRepository
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a Service. inbox and users may be nil, in which case no
// inbox entries are written and likers are shown as "Someone".
func NewService(messenger Messenger, tokens repositories.TokenRepository, inbox repositories.NotificationRepository, users repositories.UserRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		messenger: messenger,
		tokens:    tokens,
		inbox:     inbox,
		users:     users,
		logger:    logger.With("component", "notifications"),
		now:       time.Now,
	}
}

// NotifyLike tells the author of postID that likerID liked it.
func (s *Service) NotifyLike(ctx context.Context, authorID, likerID, postID string) error {
	name := s.displayName(ctx, likerID)
	body := name + " liked your post"

	s.record(ctx, &models.Notification{
		Type:        models.NotificationTypeLike,
		RecipientID: authorID,
		ActorID:     likerID,
		PostID:      postID,
		Title:       likeTitle,
		Message:     body,
	})

	token, ok, err := s.tokenFor(ctx, authorID)
	if err != nil || !ok {
		return err
	}

	_, err = s.send(ctx, &messaging.Message{
		Token:        token,
		Notification: &messaging.Notification{Title: likeTitle, Body: body},
		Data: map[string]string{
			"type":      "like",
			"postId":    postID,
			"likerId":   likerID,
			"timestamp": s.timestamp(),
		},
	})
	if err != nil {
		return fmt.Errorf("send like notification to %s: %w", authorID, err)
	}
	s.logger.Info("like notification sent", "post", postID, "author", authorID)
	return nil
}

// NotifyModeration tells the author that moderation rewrote fields of postID.
func (s *Service) NotifyModeration(ctx context.Context, authorID, postID string, fields []models.Field) error {
	if authorID == "" {
		return nil
	}

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	body := "Tu publicación ha sido moderada automáticamente. Campos afectados: " + strings.Join(names, ", ")

	s.record(ctx, &models.Notification{
		Type:        models.NotificationTypePostModerated,
		RecipientID: authorID,
		PostID:      postID,
		Title:       moderationTitle,
		Message:     body,
	})

	token, ok, err := s.tokenFor(ctx, authorID)
	if err != nil || !ok {
		return err
	}

	_, err = s.send(ctx, &messaging.Message{
		Token:        token,
		Notification: &messaging.Notification{Title: moderationTitle, Body: body},
		Data: map[string]string{
			"type":            models.NotificationTypePostModerated,
			"postId":          postID,
			"moderatedFields": strings.Join(names, ","),
			"timestamp":       s.timestamp(),
		},
	})
	if err != nil {
		return fmt.Errorf("send moderation notification to %s: %w", authorID, err)
	}
	return nil
}

// SendBulk pushes one message to every registered device except the sender's.
func (s *Service) SendBulk(ctx context.Context, req *models.BulkNotificationRequest) (*models.BulkNotificationResult, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: title and message are required", models.ErrInvalidArgument)
	}

	all, err := s.tokens.GetAllTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("load device tokens: %w", err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: no users with device tokens", models.ErrNoRecipients)
	}

	tokens := make([]string, 0, len(all))
	excluded := ""
	for _, t := range all {
		if req.SenderID != "" && t.UserID == req.SenderID {
			excluded = t.Email
			if excluded == "" {
				excluded = t.UserID
			}
			s.logger.Info("excluded sender from bulk notification", "user", t.UserID)
			continue
		}
		if t.Token != "" {
			tokens = append(tokens, t.Token)
		}
	}
	if len(tokens) == 0 {
		return nil, models.ErrNoRecipients
	}

	data := make(map[string]string, len(req.Data)+2)
	for k, v := range req.Data {
		data[k] = v
	}
	data["timestamp"] = s.timestamp()
	data["type"] = "bulk"

	var sent, failed atomic.Int64
	eg, egCtx := errgroup.WithContext(ctx)
	for start := 0; start < len(tokens); start += MaxMulticastTokens {
		chunk := tokens[start:min(start+MaxMulticastTokens, len(tokens))]
		eg.Go(func() error {
			resp, err := s.messenger.SendEachForMulticast(egCtx, &messaging.MulticastMessage{
				Tokens:       chunk,
				Notification: &messaging.Notification{Title: req.Title, Body: req.Message},
				Data:         data,
			})
			if err != nil {
				pushErrors.WithLabelValues("bulk").Inc()
				return fmt.Errorf("send multicast chunk of %d: %w", len(chunk), err)
			}
			sent.Add(int64(resp.SuccessCount))
			failed.Add(int64(resp.FailureCount))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	result := &models.BulkNotificationResult{
		Success:  true,
		Sent:     int(sent.Load()),
		Failed:   int(failed.Load()),
		Total:    len(tokens),
		Excluded: excluded,
	}
	pushesSent.WithLabelValues("bulk").Add(float64(result.Sent))
	s.logger.Info("bulk notification sent", "sent", result.Sent, "failed", result.Failed, "excluded", excluded)
	return result, nil
}

// SaveToken registers the device token of userID.
func (s *Service) SaveToken(ctx context.Context, userID string, req *models.SaveTokenRequest) error {
	if userID == "" {
		return models.ErrUnauthenticated
	}
	if strings.TrimSpace(req.Token) == "" {
		return fmt.Errorf("%w: token is required", models.ErrInvalidArgument)
	}
	return s.tokens.SaveToken(ctx, &models.DeviceToken{
		UserID: userID,
		Token:  req.Token,
		Email:  req.Email,
	})
}

// tokenFor returns the device token of userID; ok is false when the user has
// none registered.
func (s *Service) tokenFor(ctx context.Context, userID string) (string, bool, error) {
	t, err := s.tokens.GetToken(ctx, userID)
	if errors.Is(err, models.ErrTokenNotFound) {
		s.logger.Info("no device token for user", "user", userID)
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load token of %s: %w", userID, err)
	}
	return t.Token, true, nil
}

func (s *Service) send(ctx context.Context, msg *messaging.Message) (string, error) {
	kind := msg.Data["type"]
	id, err := s.messenger.Send(ctx, msg)
	if err != nil {
		pushErrors.WithLabelValues(kind).Inc()
		return "", err
	}
	pushesSent.WithLabelValues(kind).Inc()
	return id, nil
}

func (s *Service) displayName(ctx context.Context, userID string) string {
	if s.users == nil || userID == "" {
		return fallbackName
	}
	u, err := s.users.GetUserByFirebaseUID(ctx, userID)
	if err != nil {
		return fallbackName
	}
	if name := u.DisplayName(); name != "" {
		return name
	}
	return fallbackName
}

// record writes an inbox entry; the inbox is secondary to the push.
func (s *Service) record(ctx context.Context, n *models.Notification) {
	if s.inbox == nil || n.RecipientID == "" {
		return
	}
	if err := s.inbox.CreateNotification(ctx, n); err != nil {
		s.logger.Error("failed to store inbox notification", "type", n.Type, "recipient", n.RecipientID, "err", err)
	}
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
