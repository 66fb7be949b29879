package kkafka

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
)

type Serializer[T any] func(T) ([]byte, error)

type Deserializer[T any] func([]byte) (T, error)

// Serde pairs the serializer and deserializer of one record value type.
type Serde[T any] struct {
	Serializer   Serializer[T]
	Deserializer Deserializer[T]
}

var String = Serde[string]{
	Serializer: func(s string) ([]byte, error) {
		return []byte(s), nil
	},
	Deserializer: func(b []byte) (string, error) {
		return string(b), nil
	},
}

func JSON[T any]() Serde[T] {
	return Serde[T]{
		Serializer: func(v T) ([]byte, error) {
			return json.Marshal(v)
		},
		Deserializer: func(b []byte) (T, error) {
			var v T
			if err := json.Unmarshal(b, &v); err != nil {
				return v, fmt.Errorf("failed to decode json: %w", err)
			}
			return v, nil
		},
	}
}

// ProtoSerializer marshals any proto.Message in wire format.
func ProtoSerializer[T proto.Message]() Serializer[T] {
	return func(v T) ([]byte, error) {
		return proto.Marshal(v)
	}
}

// ProtoDeserializer unmarshals into a fresh message of type T.
//
//	deserializer := kkafka.ProtoDeserializer[*pb.User]()
func ProtoDeserializer[T proto.Message]() Deserializer[T] {
	return func(b []byte) (T, error) {
		var zero T
		msg := zero.ProtoReflect().New().Interface().(T)
		if err := proto.Unmarshal(b, msg); err != nil {
			return zero, fmt.Errorf("failed to decode protobuf: %w", err)
		}
		return msg, nil
	}
}

func Proto[T proto.Message]() Serde[T] {
	return Serde[T]{
		Serializer:   ProtoSerializer[T](),
		Deserializer: ProtoDeserializer[T](),
	}
}
