package models

const (
	BookingStatusPending   = "pending"
	BookingStatusAccepted  = "accepted"
	BookingStatusDenied    = "denied"
	BookingStatusCancelled = "cancelled"
)

const (
	UserStatusPending  = "pending"
	UserStatusApproved = "approved"
)

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

const (
	RepeatNone    = "none"
	RepeatDaily   = "daily"
	RepeatWeekly  = "weekly"
	RepeatMonthly = "monthly"
)

const (
	// MinLessonMinutes и MaxLessonMinutes bound a single lesson.
	MinLessonMinutes = 120
	MaxLessonMinutes = 240

	// LessonStepMinutes lessons are booked in whole-hour increments.
	LessonStepMinutes = 60

	// BasePriceEUR covers the first MinLessonMinutes of a lesson.
	BasePriceEUR = 100

	// ExtraHourPriceEUR is charged per full hour beyond the base.
	ExtraHourPriceEUR = 50
)

const (
	// DefaultAvailabilityCacheTTL время жизни кэша окон доступности
	DefaultAvailabilityCacheTTL = 5 * 60 // 5 минут в секундах

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 1000
)
