package model

import "time"

const MessageCollection = "messages"

// Message is a single chat message. Immutable once persisted; the timestamp
// is assigned by the store at write time.
type Message struct {
	Sender    string    `bson:"sender" json:"sender"`
	Text      string    `bson:"text" json:"text"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}
