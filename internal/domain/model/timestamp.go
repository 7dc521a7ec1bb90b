package model

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02",
}

// Timestamp is a stored instant that may be absent or malformed. Records
// written by older deployments carry strings, epoch numbers or BSON dates
// in the same field, so decoding never fails.
type Timestamp struct {
	Time    time.Time
	Present bool
	Valid   bool
}

func At(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC(), Present: true, Valid: true}
}

// Effective returns the instant to compare against. Absent and malformed
// values collapse to the zero time, which is earlier than any real instant.
func (ts Timestamp) Effective() time.Time {
	if !ts.Present || !ts.Valid {
		return time.Time{}
	}
	return ts.Time
}

func (ts Timestamp) Ptr() *time.Time {
	if !ts.Present || !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func ParseTimestamp(raw string) Timestamp {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Timestamp{Present: true}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return At(t)
		}
	}
	return Timestamp{Present: true}
}

func (ts *Timestamp) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	*ts = Timestamp{}

	switch t {
	case bsontype.Null, bsontype.Undefined:
		return nil
	case bsontype.DateTime:
		if ms, _, ok := bsoncore.ReadDateTime(data); ok {
			*ts = At(time.UnixMilli(ms))
			return nil
		}
	case bsontype.String:
		if s, _, ok := bsoncore.ReadString(data); ok {
			*ts = ParseTimestamp(s)
			return nil
		}
	case bsontype.Int64:
		if v, _, ok := bsoncore.ReadInt64(data); ok {
			*ts = At(time.Unix(v, 0))
			return nil
		}
	case bsontype.Int32:
		if v, _, ok := bsoncore.ReadInt32(data); ok {
			*ts = At(time.Unix(int64(v), 0))
			return nil
		}
	case bsontype.Double:
		if v, _, ok := bsoncore.ReadDouble(data); ok {
			*ts = At(time.UnixMilli(int64(v * 1000)))
			return nil
		}
	}

	ts.Present = true
	return nil
}

func (ts Timestamp) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !ts.Present || !ts.Valid {
		return bsontype.Null, nil, nil
	}
	return bsontype.DateTime, bsoncore.AppendDateTime(nil, ts.Time.UnixMilli()), nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.Ptr())
}
