package model

import (
	"encoding/json"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Ratings maps a survey item key to the submitted answer as text.
//
// Older survey forms stored answers as numbers. Decoding accepts strings and
// numbers and renders numbers as text, so a numeric survey is judged by the
// same 1..7 parsing as a textual one. Null and other value types are dropped
// and count as unanswered.
type Ratings map[string]string

// UnmarshalBSONValue decodes an embedded document of mixed-type answers.
func (r *Ratings) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*r = nil
		return nil
	case bsontype.EmbeddedDocument:
	default:
		return fmt.Errorf("ratings: unexpected bson type %s", t)
	}

	elems, err := bson.Raw(data).Elements()
	if err != nil {
		return fmt.Errorf("ratings: %w", err)
	}
	out := make(Ratings, len(elems))
	for _, e := range elems {
		v := e.Value()
		switch v.Type {
		case bsontype.String:
			out[e.Key()] = v.StringValue()
		case bsontype.Int32:
			out[e.Key()] = strconv.FormatInt(int64(v.Int32()), 10)
		case bsontype.Int64:
			out[e.Key()] = strconv.FormatInt(v.Int64(), 10)
		case bsontype.Double:
			out[e.Key()] = strconv.FormatFloat(v.Double(), 'f', -1, 64)
		case bsontype.Decimal128:
			out[e.Key()] = v.Decimal128().String()
		}
	}
	*r = out
	return nil
}

// UnmarshalJSON accepts string and number answers.
func (r *Ratings) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("ratings: %w", err)
	}
	if raw == nil {
		*r = nil
		return nil
	}
	out := make(Ratings, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case string:
			out[k] = v
		case float64:
			out[k] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	*r = out
	return nil
}
