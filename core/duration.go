package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// Duration config duration, decoded from "90s" style strings or from nanoseconds
type Duration time.Duration

// Duration as time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	if v == nil || v == "" {
		*d = 0
		return nil
	}

	dur, err := cast.ToDurationE(v)
	if err != nil {
		return fmt.Errorf("duration %s: %w", b, err)
	}

	*d = Duration(dur)
	return nil
}
