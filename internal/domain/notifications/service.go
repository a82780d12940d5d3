package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type Service struct {
	DB        *pgxpool.Pool
	Mailer    Mailer
	EmailFrom string
}

func New(db *pgxpool.Pool, mailer Mailer, emailFrom string) *Service {
	return &Service{DB: db, Mailer: mailer, EmailFrom: emailFrom}
}

// Notify records an in-app notification and best-effort emails the user.
// Delivery failures are logged, never surfaced to the triggering request.
func (s *Service) Notify(ctx context.Context, userID, email, title, body string) {
	if userID != "" {
		if _, err := s.DB.Exec(ctx, `
      INSERT INTO notifications (user_id, title, body)
      VALUES ($1, $2, $3)
    `, userID, title, body); err != nil {
			slog.Warn("notification insert failed", "userId", userID, "err", err)
		}
	}
	if s.Mailer != nil && email != "" {
		if err := s.Mailer.Send(ctx, s.EmailFrom, email, title, body); err != nil {
			slog.Warn("notification email failed", "to", email, "err", err)
		}
	}
}

// NotifyByEmail resolves the recipient's login by email before recording the
// notification. Recipients without a login still get the email copy.
func (s *Service) NotifyByEmail(ctx context.Context, email, title, body string) {
	var userID string
	if err := s.DB.QueryRow(ctx, "SELECT id FROM users WHERE lower(email) = lower($1)", email).Scan(&userID); err != nil {
		userID = ""
	}
	s.Notify(ctx, userID, email, title, body)
}

func (s *Service) List(ctx context.Context, userID string, limit int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, title, body, read, created_at
    FROM notifications
    WHERE user_id = $1
    ORDER BY created_at DESC
    LIMIT $2
  `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM notifications WHERE user_id = $1 AND NOT read", userID).Scan(&count)
	return count, err
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE notifications SET read = true WHERE user_id = $1 AND id = $2", userID, notificationID)
	return err
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE notifications SET read = true WHERE user_id = $1", userID)
	return err
}
