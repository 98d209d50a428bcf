package stratadb

import (
	"database/sql"
	"encoding/json"
)

func (s *Strata) configValue(key string) (string, bool, error) {
	var v string
	err := s.q().QueryRow(`SELECT value FROM runtime_config WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrapSQL(err)
	}
	return v, true, nil
}

func (s *Strata) setConfigValue(key, value string) error {
	_, err := s.q().Exec(
		`INSERT INTO runtime_config (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return wrapSQL(err)
}

func (s *Strata) configGet() (Output, error) {
	cfg := ConfigData{Durability: "full", AutoEmbed: s.embed.auto}
	if v, ok, err := s.configValue("durability"); err != nil {
		return nil, err
	} else if ok {
		cfg.Durability = v
	}
	if raw, ok, err := s.configValue("model"); err != nil {
		return nil, err
	} else if ok {
		var mc ModelConfig
		if err := json.Unmarshal([]byte(raw), &mc); err != nil {
			return nil, storeErrf(CodeInternal, "corrupt model config: %v", err)
		}
		cfg.Model = &mc
	}
	return ConfigOut{Config: cfg}, nil
}

func (s *Strata) configSetDurability(c ConfigSetDurability) (Output, error) {
	switch c.Mode {
	case "full", "relaxed":
	default:
		return nil, storeErrf(CodeInvalidArgument, "unknown durability mode %q (full, relaxed)", c.Mode)
	}
	sync := "NORMAL"
	if c.Mode == "full" {
		sync = "FULL"
	}
	if _, err := s.db.Exec("PRAGMA synchronous = " + sync); err != nil {
		return nil, wrapSQL(err)
	}
	if err := s.setConfigValue("durability", c.Mode); err != nil {
		return nil, err
	}
	return Unit{}, nil
}

func (s *Strata) configSetAutoEmbed(c ConfigSetAutoEmbed) (Output, error) {
	s.embed.auto = c.Enabled
	value := "false"
	if c.Enabled {
		value = "true"
	}
	if err := s.setConfigValue("auto_embed", value); err != nil {
		return nil, err
	}
	return Unit{}, nil
}

func (s *Strata) configSetModel(c ConfigSetModel) (Output, error) {
	if c.Endpoint == "" {
		return nil, storeErrf(CodeInvalidArgument, "endpoint must not be empty")
	}
	mc := ModelConfig{
		Endpoint:  c.Endpoint,
		Model:     c.Model,
		APIKey:    c.APIKey,
		TimeoutMs: c.TimeoutMs,
	}
	raw, err := json.Marshal(mc)
	if err != nil {
		return nil, storeErrf(CodeInternal, "encode model config: %v", err)
	}
	if err := s.setConfigValue("model", string(raw)); err != nil {
		return nil, err
	}
	return Unit{}, nil
}

// loadRuntimeConfig restores persisted toggles at open time.
func (s *Strata) loadRuntimeConfig() error {
	v, ok, err := s.configValue("auto_embed")
	if err != nil {
		return err
	}
	s.embed.auto = ok && v == "true"
	return nil
}
