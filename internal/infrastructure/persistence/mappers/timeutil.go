package mappers

import "time"

func millisToTime(millis int64) time.Time {
	return time.UnixMilli(millis).UTC()
}

func timeToMillisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	m := t.UnixMilli()
	return &m
}

func millisToTimePtr(m *int64) *time.Time {
	if m == nil {
		return nil
	}
	t := millisToTime(*m)
	return &t
}
