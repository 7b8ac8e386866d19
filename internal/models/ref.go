package models

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Ref is a reference to another record as the storefront API sends it:
// sometimes a bare id string, sometimes the populated object. Decoding
// normalises both shapes so callers only ever look at ID and, when the
// server populated it, Obj.
type Ref[T any] struct {
	ID  string
	Obj *T
}

// RefTo builds an unpopulated reference.
func RefTo[T any](id string) Ref[T] {
	return Ref[T]{ID: id}
}

// Populated builds a reference carrying the full record.
func Populated[T any](id string, obj T) Ref[T] {
	return Ref[T]{ID: id, Obj: &obj}
}

func (r Ref[T]) IsZero() bool {
	return r.ID == "" && r.Obj == nil
}

// MarshalJSON writes a populated reference as its record, with "_id" set to
// r.ID so the id survives a decode even when the record left it empty.
func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.Obj != nil {
		b, err := json.Marshal(r.Obj)
		if err != nil {
			return nil, err
		}
		if r.ID == "" || gjson.GetBytes(b, "_id").String() == r.ID {
			return b, nil
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(b, &fields); err != nil {
			return nil, fmt.Errorf("reference record must encode as an object: %w", err)
		}
		id, err := json.Marshal(r.ID)
		if err != nil {
			return nil, err
		}
		fields["_id"] = id
		return json.Marshal(fields)
	}
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}

func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid reference payload: %s", data)
	}

	res := gjson.ParseBytes(data)
	switch {
	case res.Type == gjson.Null:
		*r = Ref[T]{}
	case res.Type == gjson.String:
		*r = Ref[T]{ID: res.String()}
	case res.IsObject():
		var obj T
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("decode referenced record: %w", err)
		}
		*r = Ref[T]{ID: res.Get("_id").String(), Obj: &obj}
	default:
		return fmt.Errorf("reference must be an id or an object, got %s", res.Type)
	}
	return nil
}
