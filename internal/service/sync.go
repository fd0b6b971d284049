package service

import (
	"time"

	"github.com/google/uuid"
)

// Feature areas; each maps to /topic/couple/{coupleId}/{area}.
const (
	AreaCouple         = ""
	AreaRead           = "read"
	AreaTyping         = "typing"
	AreaSchedule       = "schedule"
	AreaBucket         = "bucket"
	AreaFinance        = "finance"
	AreaAnniversary    = "anniversary"
	AreaRecommendation = "recommendation"
)

const scheduleColor = "#FF6B9D"

// ChatSyncMessage announces a persisted chat message on the bare couple topic.
type ChatSyncMessage struct {
	Type      string          `json:"type"`
	EventType string          `json:"eventType"`
	Message   MessageResponse `json:"message"`
	UserID    uuid.UUID       `json:"userId"`
	Timestamp time.Time       `json:"timestamp"`
}

func newChatSync(msg MessageResponse, now time.Time) ChatSyncMessage {
	return ChatSyncMessage{Type: "MESSAGE", EventType: "NEW_MESSAGE", Message: msg, UserID: msg.SenderID, Timestamp: now}
}

type ReadReceiptMessage struct {
	Type       string      `json:"type"`
	MessageIDs []uuid.UUID `json:"messageIds"`
	UserID     uuid.UUID   `json:"userId"`
	ReadAt     time.Time   `json:"readAt"`
}

type TypingIndicator struct {
	UserID   uuid.UUID `json:"userId"`
	IsTyping bool      `json:"isTyping"`
}

// SystemMessage events.
const (
	SystemUserConnected    = "USER_CONNECTED"
	SystemUserDisconnected = "USER_DISCONNECTED"
)

type SystemMessage struct {
	Type      string    `json:"type"`
	Event     string    `json:"event"`
	UserID    uuid.UUID `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

type ScheduleData struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Date        string    `json:"date"`
	Time        *string   `json:"time"`
	ColorHex    string    `json:"colorHex"`
	Description *string   `json:"description"`
}

type ScheduleSyncMessage struct {
	EventType string       `json:"eventType"`
	Schedule  ScheduleData `json:"schedule"`
	UserID    uuid.UUID    `json:"userId"`
	Timestamp time.Time    `json:"timestamp"`
}

type BucketData struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Category    *string    `json:"category"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

type BucketSyncMessage struct {
	EventType string     `json:"eventType"`
	Bucket    BucketData `json:"bucket"`
	UserID    uuid.UUID  `json:"userId"`
	Timestamp time.Time  `json:"timestamp"`
}

type BudgetData struct {
	MonthlyBudget int64  `json:"monthlyBudget"`
	Month         string `json:"month"`
}

type ExpenseData struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Amount   int64     `json:"amount"`
	Date     string    `json:"date"`
}

type FinanceSyncMessage struct {
	EventType string       `json:"eventType"`
	Budget    *BudgetData  `json:"budget,omitempty"`
	Expense   *ExpenseData `json:"expense,omitempty"`
	UserID    uuid.UUID    `json:"userId"`
	Timestamp time.Time    `json:"timestamp"`
}

type AnniversaryData struct {
	Date *string `json:"date"`
}

type AnniversarySyncMessage struct {
	EventType   string          `json:"eventType"`
	Anniversary AnniversaryData `json:"anniversary"`
	UserID      uuid.UUID       `json:"userId"`
	Timestamp   time.Time       `json:"timestamp"`
}

type MbtiUpdatedMessage struct {
	Type      string    `json:"type"`
	UserID    uuid.UUID `json:"userId"`
	MbtiType  string    `json:"mbtiType"`
	Timestamp time.Time `json:"timestamp"`
}

type RecommendationData struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
	Title  *string   `json:"title"`
}

type RecommendationSyncMessage struct {
	EventType      string             `json:"eventType"`
	Recommendation RecommendationData `json:"recommendation"`
	UserID         uuid.UUID          `json:"userId"`
	Timestamp      time.Time          `json:"timestamp"`
}
