package userconfig

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Config is the per-conversation configuration. One instance is loaded per
// inbound message for the resolved config key and discarded afterwards; it is
// never shared across requests.
type Config struct {
	InitMessage     string
	Model           string
	Temperature     float64
	AutoTrimHistory bool
	ExtraParams     map[string]any
	Roles           map[string]*RolePreset
}

// RolePreset is a named, user-defined bundle of assistant behavior, distinct
// from the authorization role of a speaker.
type RolePreset struct {
	InitMessage string         `json:"SYSTEM_INIT_MESSAGE"`
	ExtraParams map[string]any `json:"API_EXTRA_PARAMS"`
}

// Clone returns a deep copy. The store hands out clones of its defaults so a
// request can never mutate shared state.
func (c *Config) Clone() *Config {
	out := &Config{
		InitMessage:     c.InitMessage,
		Model:           c.Model,
		Temperature:     c.Temperature,
		AutoTrimHistory: c.AutoTrimHistory,
		ExtraParams:     maps.Clone(c.ExtraParams),
		Roles:           make(map[string]*RolePreset, len(c.Roles)),
	}
	for name, preset := range c.Roles {
		out.Roles[name] = &RolePreset{
			InitMessage: preset.InitMessage,
			ExtraParams: maps.Clone(preset.ExtraParams),
		}
	}
	return out
}

// Merge applies a single key=value update. The field's declared kind decides
// the coercion; on any error the config is left unchanged.
func (c *Config) Merge(key, value string) error {
	kind, ok := configSchema[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	v, err := coerce(kind, value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	switch key {
	case KeyInitMessage:
		c.InitMessage = v.(string)
	case KeyModel:
		c.Model = v.(string)
	case KeyTemperature:
		c.Temperature = v.(float64)
	case KeyAutoTrimHistory:
		c.AutoTrimHistory = v.(bool)
	case KeyExtraParams:
		c.ExtraParams = v.(map[string]any)
	}
	return nil
}

// Merge applies a single key=value update to the preset, with the same
// coercion contract as Config.Merge.
func (p *RolePreset) Merge(key, value string) error {
	kind, ok := roleSchema[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	v, err := coerce(kind, value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	switch key {
	case KeyInitMessage:
		p.InitMessage = v.(string)
	case KeyExtraParams:
		p.ExtraParams = v.(map[string]any)
	}
	return nil
}

// Role returns the named preset, or nil.
func (c *Config) Role(name string) *RolePreset {
	return c.Roles[name]
}

// DeleteRole removes the named preset. Deleting a missing role is a no-op.
func (c *Config) DeleteRole(name string) {
	delete(c.Roles, name)
}

// document is the persisted JSON shape of a Config, kept compatible with the
// stored blobs this layer has always written: top-level config fields plus
// role presets nested under USER_DEFINE.ROLE.
type document struct {
	InitMessage     string             `json:"SYSTEM_INIT_MESSAGE"`
	Model           string             `json:"CHAT_MODEL"`
	Temperature     float64            `json:"TEMPERATURE"`
	AutoTrimHistory bool               `json:"AUTO_TRIM_HISTORY"`
	ExtraParams     map[string]any     `json:"API_EXTRA_PARAMS"`
	UserDefine      documentUserDefine `json:"USER_DEFINE"`
}

type documentUserDefine struct {
	Role map[string]*RolePreset `json:"ROLE"`
}

// encode serializes the full config, role definitions included.
func (c *Config) encode() ([]byte, error) {
	doc := document{
		InitMessage:     c.InitMessage,
		Model:           c.Model,
		Temperature:     c.Temperature,
		AutoTrimHistory: c.AutoTrimHistory,
		ExtraParams:     c.ExtraParams,
		UserDefine:      documentUserDefine{Role: c.Roles},
	}
	return json.Marshal(doc)
}

// overlay applies a stored blob onto the config. Every stored field is
// accepted only if its JSON kind matches the declared schema kind; anything
// else (stale or foreign schema) is skipped. Returns the keys that were
// skipped so the caller can log them.
func (c *Config) overlay(raw []byte) ([]string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse stored config: %w", err)
	}

	var skipped []string
	for key, val := range fields {
		if key == "USER_DEFINE" {
			skipped = append(skipped, c.overlayRoles(val)...)
			continue
		}
		kind, ok := configSchema[key]
		if !ok || jsonKind(val) != kind {
			skipped = append(skipped, key)
			continue
		}
		switch key {
		case KeyInitMessage:
			_ = json.Unmarshal(val, &c.InitMessage)
		case KeyModel:
			_ = json.Unmarshal(val, &c.Model)
		case KeyTemperature:
			_ = json.Unmarshal(val, &c.Temperature)
		case KeyAutoTrimHistory:
			_ = json.Unmarshal(val, &c.AutoTrimHistory)
		case KeyExtraParams:
			_ = json.Unmarshal(val, &c.ExtraParams)
		}
	}
	return skipped, nil
}

// overlayRoles applies the USER_DEFINE.ROLE subtree with the same per-field
// type guard, seeding each named preset before overlaying its fields.
func (c *Config) overlayRoles(raw json.RawMessage) []string {
	var userDefine struct {
		Role map[string]json.RawMessage `json:"ROLE"`
	}
	if err := json.Unmarshal(raw, &userDefine); err != nil {
		return []string{"USER_DEFINE"}
	}

	var skipped []string
	for name, rawPreset := range userDefine.Role {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(rawPreset, &fields); err != nil {
			skipped = append(skipped, "USER_DEFINE.ROLE."+name)
			continue
		}
		preset := &RolePreset{ExtraParams: map[string]any{}}
		for key, val := range fields {
			kind, ok := roleSchema[key]
			if !ok || jsonKind(val) != kind {
				skipped = append(skipped, "USER_DEFINE.ROLE."+name+"."+key)
				continue
			}
			switch key {
			case KeyInitMessage:
				_ = json.Unmarshal(val, &preset.InitMessage)
			case KeyExtraParams:
				_ = json.Unmarshal(val, &preset.ExtraParams)
			}
		}
		if c.Roles == nil {
			c.Roles = make(map[string]*RolePreset)
		}
		c.Roles[name] = preset
	}
	return skipped
}
