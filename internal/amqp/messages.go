package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"notebk/internal/transfer"
)

// BackupMessage carries one shared backup file. Content is the serialized
// envelope exactly as exported.
type BackupMessage struct {
	Filename  string    `json:"filename"`
	Title     string    `json:"title,omitempty"`
	Content   []byte    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBackupMessage wraps a transfer payload.
func NewBackupMessage(p transfer.Payload) *BackupMessage {
	return &BackupMessage{
		Filename:  p.Filename,
		Title:     p.Title,
		Content:   p.Content,
		Timestamp: time.Now(),
	}
}

// Payload converts the message back into a transfer payload.
func (m *BackupMessage) Payload() transfer.Payload {
	return transfer.Payload{Filename: m.Filename, Title: m.Title, Content: m.Content}
}

// ToJSON converts the message to JSON bytes
func (m *BackupMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BackupMessageFromJSON decodes a message and rejects one without a file name.
func BackupMessageFromJSON(data []byte) (*BackupMessage, error) {
	var msg BackupMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Filename == "" {
		return nil, errors.New("backup message without filename")
	}
	return &msg, nil
}
