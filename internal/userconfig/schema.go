// Package userconfig holds the per-conversation configuration object, its
// field schema, the key=value merge rules, and the load/save overlay logic
// on top of the key-value store.
package userconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind is the declared type of a configuration field. The schema below is the
// single source of truth for how raw key=value input is coerced.
type Kind int

const (
	KindString Kind = iota + 1
	KindNumber
	KindBool
	KindJSON
)

// Configuration keys. The names are the stable wire/storage names and the
// literal tokens users type in /setenv and /role.
const (
	KeyInitMessage     = "SYSTEM_INIT_MESSAGE"
	KeyModel           = "CHAT_MODEL"
	KeyTemperature     = "TEMPERATURE"
	KeyAutoTrimHistory = "AUTO_TRIM_HISTORY"
	KeyExtraParams     = "API_EXTRA_PARAMS"
)

var (
	// ErrUnknownKey is returned when merging a key absent from the schema.
	ErrUnknownKey = errors.New("unknown configuration key")
	// ErrTypeMismatch is returned when a value cannot be coerced to the
	// field's declared kind.
	ErrTypeMismatch = errors.New("value does not match field type")
	// ErrInvalidJSON is returned when a JSON-kinded field receives
	// unparseable input.
	ErrInvalidJSON = errors.New("invalid JSON value")
)

// configSchema declares the fields of Config addressable via /setenv.
var configSchema = map[string]Kind{
	KeyInitMessage:     KindString,
	KeyModel:           KindString,
	KeyTemperature:     KindNumber,
	KeyAutoTrimHistory: KindBool,
	KeyExtraParams:     KindJSON,
}

// roleSchema declares the fields of a RolePreset addressable via /role.
var roleSchema = map[string]Kind{
	KeyInitMessage: KindString,
	KeyExtraParams: KindJSON,
}

// coerce converts a raw string value to the declared kind. Booleans must be
// the literal tokens "true" or "false"; numbers must parse fully; JSON fields
// must contain a JSON object. A coercion that would silently produce a wrong
// value (e.g. "abc" into a number) is an error instead.
func coerce(kind Kind, value string) (any, error) {
	switch kind {
	case KindString:
		return value, nil
	case KindBool:
		switch value {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("%w: %q is not a boolean", ErrTypeMismatch, value)
	case KindNumber:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrTypeMismatch, value)
		}
		return n, nil
	case KindJSON:
		var obj map[string]any
		if err := json.Unmarshal([]byte(value), &obj); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return obj, nil
	}
	return nil, fmt.Errorf("%w: unsupported kind %d", ErrTypeMismatch, kind)
}

// jsonKind classifies a raw JSON value by its leading token. Used by the
// load overlay to accept only stored fields whose type still matches the
// declared schema.
func jsonKind(raw json.RawMessage) Kind {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return 0
	}
	switch s[0] {
	case '"':
		return KindString
	case 't', 'f':
		return KindBool
	case '{', '[':
		return KindJSON
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return KindNumber
	}
	return 0
}
