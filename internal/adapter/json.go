package adapter

import "encoding/json"

// JSON encodes event envelopes and broker messages
//
//go:generate mockgen -source=json.go -destination=../mocks/json.go -package=mocks -mock_names=JSON=MockJSON
type JSON interface {
	Marshal(v any) ([]byte, error)
}

type stdJSON struct{}

// NewJSON returns an encoding/json backed encoder
func NewJSON() JSON {
	return stdJSON{}
}

func (stdJSON) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}
