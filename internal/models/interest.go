package models

import "time"

// Пределы радиуса геозоны интереса (метры).
const (
	InterestRadiusMin     = 100
	InterestRadiusMax     = 1000
	InterestRadiusDefault = 500
)

// Interest — пользовательская круговая геозона для нотификаций.
//
// Создаётся/изменяется/удаляется пользователем напрямую; матчер нотификаций
// читает её только на чтение.
type Interest struct {
	ID          string `bson:"_id" json:"id"`
	UserID      string `bson:"user_id" json:"userId"`
	Coordinates LatLng `bson:"coordinates" json:"coordinates"`
	// Radius — радиус в метрах, [InterestRadiusMin, InterestRadiusMax].
	Radius    float64   `bson:"radius" json:"radius"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ClampRadius приводит радиус к допустимому диапазону; 0 -> default.
func ClampRadius(r float64) float64 {
	if r == 0 {
		return InterestRadiusDefault
	}

	if r < InterestRadiusMin {
		return InterestRadiusMin
	}

	if r > InterestRadiusMax {
		return InterestRadiusMax
	}

	return r
}

// NotificationMatch — факт совпадения сообщения с геозоной интереса.
// Создаётся не более одного раза на пару (MessageID, InterestID);
// существование проверяется перед вставкой.
type NotificationMatch struct {
	ID         string `bson:"_id" json:"id"`
	UserID     string `bson:"user_id" json:"userId"`
	MessageID  string `bson:"message_id" json:"messageId"`
	InterestID string `bson:"interest_id" json:"interestId"`
	// Distance — расстояние от центра интереса до геометрии сообщения, метры.
	Distance   float64    `bson:"distance" json:"distance"`
	Notified   bool       `bson:"notified" json:"notified"`
	NotifiedAt *time.Time `bson:"notified_at,omitempty" json:"notifiedAt,omitempty"`
	// Error — ошибка доставки пуша, если была; другим пользователям не мешает.
	Error     string    `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
