package model

// MessageType is the declared payload kind of a chat message.
type MessageType string

const (
	MessageText           MessageType = "TEXT"
	MessageImage          MessageType = "IMAGE"
	MessageSticker        MessageType = "STICKER"
	MessageSharedSchedule MessageType = "SHARED_SCHEDULE"
	MessageSharedPlace    MessageType = "SHARED_PLACE"
	MessageSharedBucket   MessageType = "SHARED_BUCKET"
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageSticker, MessageSharedSchedule, MessageSharedPlace, MessageSharedBucket:
		return true
	}
	return false
}

type GenderType string

const (
	GenderMale   GenderType = "MALE"
	GenderFemale GenderType = "FEMALE"
	GenderOther  GenderType = "OTHER"
)

type RepeatType string

const (
	RepeatNone    RepeatType = "NONE"
	RepeatDaily   RepeatType = "DAILY"
	RepeatWeekly  RepeatType = "WEEKLY"
	RepeatMonthly RepeatType = "MONTHLY"
	RepeatYearly  RepeatType = "YEARLY"
)

type ExpenseCategory string

const (
	ExpenseFood      ExpenseCategory = "FOOD"
	ExpenseCafe      ExpenseCategory = "CAFE"
	ExpenseDate      ExpenseCategory = "DATE"
	ExpenseTransport ExpenseCategory = "TRANSPORT"
	ExpenseShopping  ExpenseCategory = "SHOPPING"
	ExpenseTravel    ExpenseCategory = "TRAVEL"
	ExpenseGift      ExpenseCategory = "GIFT"
	ExpenseCulture   ExpenseCategory = "CULTURE"
	ExpenseOther     ExpenseCategory = "OTHER"
)

// PaidByType is relative to the member who recorded the expense.
type PaidByType string

const (
	PaidByMe       PaidByType = "ME"
	PaidByPartner  PaidByType = "PARTNER"
	PaidByTogether PaidByType = "TOGETHER"
)

type RecommendationStatus string

const (
	RecommendationPending    RecommendationStatus = "PENDING"
	RecommendationProcessing RecommendationStatus = "PROCESSING"
	RecommendationCompleted  RecommendationStatus = "COMPLETED"
	RecommendationFailed     RecommendationStatus = "FAILED"
)
