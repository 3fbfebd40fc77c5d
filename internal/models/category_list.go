package models

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// CategoryList is a menu item's category set. Older menu documents store it as
// a single comma separated string; both shapes decode to a trimmed list.
type CategoryList []string

func (l *CategoryList) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*l = nil
		return nil
	case bsontype.Array:
		var values []string
		if err := bson.UnmarshalValue(t, data, &values); err != nil {
			return err
		}
		*l = cleanCategories(values)
		return nil
	case bsontype.String:
		var value string
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		*l = cleanCategories(strings.Split(value, ","))
		return nil
	default:
		return fmt.Errorf("cannot decode %s into CategoryList", t)
	}
}

// MarshalBSONValue always writes an array.
func (l CategoryList) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if l == nil {
		return bson.MarshalValue([]string{})
	}
	return bson.MarshalValue([]string(l))
}

// Has reports whether name is one of the categories, ignoring case.
func (l CategoryList) Has(name string) bool {
	name = strings.TrimSpace(name)
	for _, c := range l {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

func cleanCategories(values []string) CategoryList {
	out := make(CategoryList, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || out.Has(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
