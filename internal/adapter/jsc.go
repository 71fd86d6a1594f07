package adapter

import "github.com/gowebpki/jcs"

// JCS canonicalizes JSON (RFC 8785) so event hashes do not depend on key order
//
//go:generate mockgen -source=jsc.go -destination=../mocks/jsc.go -package=mocks -mock_names=JCS=MockJCS
type JCS interface {
	Transform(data []byte) ([]byte, error)
}

type gowebpkiJCS struct{}

// NewJCS returns a canonicalizer backed by github.com/gowebpki/jcs
func NewJCS() JCS {
	return gowebpkiJCS{}
}

func (gowebpkiJCS) Transform(data []byte) ([]byte, error) {
	return jcs.Transform(data)
}
