package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Store 保存整個 session, 同一 session 的併發請求後寫者覆蓋
type Store interface {
	// Load id 為空或不存在時回傳新的 session
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Destroy(ctx context.Context, id string) error
}

// Session 以 key 存放任意 json 值
type Session struct {
	ID       string
	values   map[string]json.RawMessage
	isNew    bool
	modified bool
}

func New() *Session {
	return &Session{
		ID:     uuid.NewString(),
		values: map[string]json.RawMessage{},
		isNew:  true,
	}
}

func decode(id string, raw []byte) (*Session, error) {
	s := &Session{ID: id, values: map[string]json.RawMessage{}}
	if err := json.Unmarshal(raw, &s.values); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return s, nil
}

func (s *Session) encode() ([]byte, error) {
	return json.Marshal(s.values)
}

// IsNew 尚未寫入 store
func (s *Session) IsNew() bool {
	return s.isNew
}

func (s *Session) Modified() bool {
	return s.modified
}

// Raw 回傳 key 對應的原始 json, 不存在時為 nil
func (s *Session) Raw(key string) json.RawMessage {
	return s.values[key]
}

func (s *Session) Get(key string, dst any) (bool, error) {
	raw, ok := s.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decode session key %s: %w", key, err)
	}
	return true, nil
}

func (s *Session) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode session key %s: %w", key, err)
	}
	s.values[key] = raw
	s.modified = true
	return nil
}

func (s *Session) Delete(key string) {
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.modified = true
	}
}
