package config

import (
	"fmt"
	"strings"
)

// Required collects unset mandatory settings so startup can report all of
// them in one error instead of failing on the first.
type Required struct {
	missing []string
}

func (r *Required) String(env, value string) *Required {
	if strings.TrimSpace(value) == "" {
		r.missing = append(r.missing, env)
	}
	return r
}

func (r *Required) Bytes(env string, value []byte) *Required {
	if len(value) == 0 {
		r.missing = append(r.missing, env)
	}
	return r
}

func (r *Required) Err() error {
	if len(r.missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required env: %s", strings.Join(r.missing, ", "))
}
