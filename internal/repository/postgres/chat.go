package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/goonthug/sport-kursach/internal/domain"
	"github.com/goonthug/sport-kursach/internal/repository"
)

const messageColumns = `message_id, rental_id, sender_id, receiver_id, message_text, message_type, file_url, sent_date, is_read, read_date`

type chatMessageRepository struct {
	db *sql.DB
}

func NewChatMessageRepository(db *sql.DB) repository.ChatMessageRepository {
	return &chatMessageRepository{db: db}
}

func (r *chatMessageRepository) Create(ctx context.Context, m *domain.ChatMessage) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.SentDate.IsZero() {
		m.SentDate = time.Now()
	}
	query := `INSERT INTO chat_messages (` + messageColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := q(ctx, r.db).ExecContext(ctx, query,
		m.ID, m.RentalID, m.SenderID, m.ReceiverID, m.Text, m.Type,
		nullString(m.FileURL), m.SentDate, m.IsRead, m.ReadDate)
	return err
}

func (r *chatMessageRepository) ListByRental(ctx context.Context, rentalID uuid.UUID) ([]domain.ChatMessage, error) {
	query := `SELECT ` + messageColumns + ` FROM chat_messages WHERE rental_id = $1 ORDER BY sent_date`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func (r *chatMessageRepository) MarkAllRead(ctx context.Context, rentalID, receiverID uuid.UUID, readAt time.Time) (int64, error) {
	query := `UPDATE chat_messages SET is_read = true, read_date = $1
	          WHERE rental_id = $2 AND receiver_id = $3 AND is_read = false`
	res, err := q(ctx, r.db).ExecContext(ctx, query, readAt, rentalID, receiverID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *chatMessageRepository) CountUnread(ctx context.Context, rentalID, receiverID uuid.UUID) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM chat_messages WHERE rental_id = $1 AND receiver_id = $2 AND is_read = false`
	err := q(ctx, r.db).QueryRowContext(ctx, query, rentalID, receiverID).Scan(&count)
	return count, err
}

func (r *chatMessageRepository) ListThreads(ctx context.Context, userID uuid.UUID) ([]domain.ChatThread, error) {
	// Latest message per rental the user participates in, joined with
	// the inventory name and the user's unread count for the thread.
	query := `
		SELECT DISTINCT ON (m.rental_id)
		       ` + prefixed("m", messageColumns) + `,
		       i.name,
		       (SELECT count(*) FROM chat_messages u
		         WHERE u.rental_id = m.rental_id AND u.receiver_id = $1 AND u.is_read = false)
		FROM chat_messages m
		JOIN rentals r ON r.rental_id = m.rental_id
		JOIN inventory i ON i.inventory_id = r.inventory_id
		WHERE m.sender_id = $1 OR m.receiver_id = $1
		ORDER BY m.rental_id, m.sent_date DESC`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var threads []domain.ChatThread
	for rows.Next() {
		var t domain.ChatThread
		m := &t.LastMessage
		var fileURL sql.NullString
		if err := rows.Scan(&m.ID, &m.RentalID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Type,
			&fileURL, &m.SentDate, &m.IsRead, &m.ReadDate, &t.InventoryName, &t.UnreadCount); err != nil {
			return nil, err
		}
		m.FileURL = fileURL.String
		t.RentalID = m.RentalID
		threads = append(threads, t)
	}
	return threads, rows.Err()
}

func prefixed(alias, columns string) string {
	out := ""
	for i, c := range splitColumns(columns) {
		if i > 0 {
			out += ", "
		}
		out += alias + "." + c
	}
	return out
}

func splitColumns(columns string) []string {
	var cols []string
	cur := ""
	for _, r := range columns {
		switch r {
		case ',':
			cols = append(cols, cur)
			cur = ""
		case ' ', '\n', '\t':
		default:
			cur += string(r)
		}
	}
	if cur != "" {
		cols = append(cols, cur)
	}
	return cols
}

func collectMessages(rows *sql.Rows) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		var fileURL sql.NullString
		if err := rows.Scan(&m.ID, &m.RentalID, &m.SenderID, &m.ReceiverID, &m.Text, &m.Type,
			&fileURL, &m.SentDate, &m.IsRead, &m.ReadDate); err != nil {
			return nil, err
		}
		m.FileURL = fileURL.String
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
