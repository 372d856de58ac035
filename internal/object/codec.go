package object

import (
	"encoding/json"
	"fmt"
	"time"
)

// envelope is the stored form of every object.
type envelope struct {
	Kind Kind `json:"kind"`

	Filename string `json:"filename,omitempty"`
	Content  []byte `json:"content,omitempty"`

	Message   string            `json:"message,omitempty"`
	Timestamp *time.Time        `json:"timestamp,omitempty"`
	Parents   []Digest          `json:"parents,omitempty"`
	Files     map[string]Digest `json:"files,omitempty"`
}

func Encode(obj Object) ([]byte, error) {
	var env envelope
	switch o := obj.(type) {
	case *Blob:
		env = envelope{Kind: KindBlob, Filename: o.filename, Content: o.content}
	case *Commit:
		ts := o.timestamp
		env = envelope{
			Kind:      KindCommit,
			Message:   o.message,
			Timestamp: &ts,
			Parents:   o.parents,
			Files:     o.files,
		}
	default:
		return nil, fmt.Errorf("unsupported object type %T", obj)
	}
	return json.Marshal(env)
}

// Decode rebuilds an object and recomputes its digest. Callers compare the
// result against the key they looked it up by.
func Decode(data []byte) (Object, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshaling object: %w", err)
	}

	switch env.Kind {
	case KindBlob:
		return NewBlob(env.Filename, env.Content), nil
	case KindCommit:
		if env.Timestamp == nil {
			return nil, fmt.Errorf("commit without timestamp")
		}
		return NewCommit(env.Message, *env.Timestamp, env.Parents, env.Files)
	default:
		return nil, fmt.Errorf("unknown object kind %q", env.Kind)
	}
}
