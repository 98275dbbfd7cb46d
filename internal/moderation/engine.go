package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anonto42/post-app/backend/internal/models"
	"github.com/anonto42/post-app/backend/internal/repositories"
)

// AuthorNotifier tells a post's author that moderation rewrote their post.
type AuthorNotifier interface {
	NotifyModeration(ctx context.Context, authorID, postID string, fields []models.Field) error
}

// Engine moderates newly created posts.
type Engine struct {
	matcher  *Matcher
	posts    repositories.PostRepository
	logs     repositories.ModerationLogRepository
	notifier AuthorNotifier
	fields   []models.Field
	logger   *slog.Logger
	now      func() time.Time
}

// NewEngine creates an Engine. notifier may be nil.
func NewEngine(matcher *Matcher, posts repositories.PostRepository, logs repositories.ModerationLogRepository, notifier AuthorNotifier, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		matcher:  matcher,
		posts:    posts,
		logs:     logs,
		notifier: notifier,
		fields:   models.ModeratedFields,
		logger:   logger.With("component", "moderation"),
		now:      time.Now,
	}
}

// ModeratePost scans the moderated fields of a just-created post and, when a
// banned term is found, persists the redacted text, the moderation flags and
// an audit record. post carries the field values at creation time.
//
// An error is returned only when the post update itself failed; the post is
// then flagged with moderation_error so it is never left in an unknown state.
func (e *Engine) ModeratePost(ctx context.Context, postID string, post *models.Post) error {
	start := time.Now()
	defer func() {
		moderationDuration.Observe(time.Since(start).Seconds())
	}()

	if post == nil {
		e.logger.Warn("no data found for post", "post", postID)
		return nil
	}

	// the creation trigger may be delivered more than once
	current, err := e.posts.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, models.ErrPostNotFound) {
			e.logger.Warn("post vanished before moderation", "post", postID)
			return nil
		}
		return fmt.Errorf("read post %s: %w", postID, err)
	}
	if current.IsModerated {
		e.logger.Info("post already moderated, skipping", "post", postID)
		moderationOutcomes.WithLabelValues("duplicate").Inc()
		return nil
	}

	e.logger.Info("starting moderation", "post", postID)

	update := &models.ModerationUpdate{Redacted: make(map[models.Field]string)}
	for _, f := range e.fields {
		value := post.FieldValue(f)
		if value == "" {
			continue
		}
		res := e.matcher.Scan(value)
		if !res.Matched {
			continue
		}
		update.Fields = append(update.Fields, f)
		update.Redacted[f] = res.Text
		e.logger.Info("field moderated", "post", postID, "field", f)
	}

	if len(update.Fields) == 0 {
		e.logger.Info("post passed moderation check", "post", postID)
		moderationOutcomes.WithLabelValues("clean").Inc()
		return nil
	}

	update.ModeratedAt = e.now()
	if err := e.posts.ApplyModeration(ctx, postID, update); err != nil {
		moderationOutcomes.WithLabelValues("error").Inc()
		e.logger.Error("failed to apply moderation", "post", postID, "err", err)
		if markErr := e.posts.MarkModerationFailed(ctx, postID, err.Error()); markErr != nil {
			e.logger.Error("failed to flag post with moderation error", "post", postID, "err", markErr)
		}
		return fmt.Errorf("%w: post %s: %w", models.ErrModerationWrite, postID, err)
	}

	moderationOutcomes.WithLabelValues("redacted").Inc()
	moderatedFieldCount.Add(float64(len(update.Fields)))
	e.logger.Info("post moderated", "post", postID, "fields", update.Fields)

	e.writeLog(ctx, postID, post, update)

	if e.notifier != nil && post.UserID != "" {
		if err := e.notifier.NotifyModeration(ctx, post.UserID, postID, update.Fields); err != nil {
			e.logger.Error("failed to notify author about moderation", "post", postID, "user", post.UserID, "err", err)
		}
	}
	return nil
}

// writeLog records the audit entry. The post already holds its redacted state,
// so a failure here is logged and dropped.
func (e *Engine) writeLog(ctx context.Context, postID string, original *models.Post, update *models.ModerationUpdate) {
	entry := &models.ModerationLogEntry{
		PostID:          postID,
		ModeratedFields: make([]string, 0, len(update.Fields)),
		FieldCount:      len(update.Fields),
		OriginalContent: make(map[string]string, len(update.Fields)),
		RedactedContent: make(map[string]string, len(update.Fields)),
		UserID:          original.UserID,
		Timestamp:       update.ModeratedAt,
	}
	for _, f := range update.Fields {
		entry.ModeratedFields = append(entry.ModeratedFields, string(f))
		entry.OriginalContent[string(f)] = original.FieldValue(f)
		entry.RedactedContent[string(f)] = update.Redacted[f]
	}

	if err := e.logs.CreateModerationLog(ctx, entry); err != nil {
		e.logger.Error("failed to create moderation log", "post", postID, "err", err)
		return
	}
	e.logger.Info("moderation log created", "post", postID, "log", entry.ID)
}
