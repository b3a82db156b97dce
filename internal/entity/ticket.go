package entity

import "time"

// TicketView - данные страницы подтверждения. Создается один раз при
// успешной отправке формы и больше не меняется.
type TicketView struct {
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Month        string    `json:"month"`
	Day          int       `json:"day"`
	Year         int       `json:"year"`
	TicketNumber string    `json:"ticket_number"`
	IssuedAt     time.Time `json:"issued_at"`
}

// TicketIssuedMessage - событие о выпуске билета для RabbitMQ
type TicketIssuedMessage struct {
	SessionID    string    `json:"session_id"`
	TicketNumber string    `json:"ticket_number"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	AvatarType   string    `json:"avatar_type"`
	AvatarSize   int64     `json:"avatar_size"`
	Timestamp    time.Time `json:"timestamp"`
}
