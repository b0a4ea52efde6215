package store

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Op int

const (
	// OpNotNull matches when the field is present and not null.
	OpNotNull Op = iota + 1
	// OpExists matches when the dotted path resolves, including array indexes.
	OpExists
	// OpRegex matches string fields (or string array elements) against Pattern.
	OpRegex
)

type Condition struct {
	Field           string
	Op              Op
	Pattern         string
	CaseInsensitive bool
}

// Filter matches documents satisfying every All condition and, when Any is
// non-empty, at least one Any condition. The zero Filter matches everything.
type Filter struct {
	All []Condition
	Any []Condition
}

func NotNull(field string) Condition {
	return Condition{Field: field, Op: OpNotNull}
}

func Exists(path string) Condition {
	return Condition{Field: path, Op: OpExists}
}

func Regex(field, pattern string) Condition {
	return Condition{Field: field, Op: OpRegex, Pattern: pattern}
}

func IRegex(field, pattern string) Condition {
	return Condition{Field: field, Op: OpRegex, Pattern: pattern, CaseInsensitive: true}
}

// Where builds a filter requiring all conditions.
func Where(conds ...Condition) Filter {
	return Filter{All: conds}
}

// AnyOf builds a filter requiring at least one condition.
func AnyOf(conds ...Condition) Filter {
	return Filter{Any: conds}
}

// BSON translates the filter into a mongo query document.
func (f Filter) BSON() bson.D {
	q := bson.D{}
	for _, c := range f.All {
		q = append(q, c.bsonElem())
	}
	if len(f.Any) > 0 {
		or := bson.A{}
		for _, c := range f.Any {
			or = append(or, bson.D{c.bsonElem()})
		}
		q = append(q, bson.E{Key: "$or", Value: or})
	}
	return q
}

func (c Condition) bsonElem() bson.E {
	switch c.Op {
	case OpNotNull:
		return bson.E{Key: c.Field, Value: bson.D{{Key: "$ne", Value: nil}}}
	case OpExists:
		return bson.E{Key: c.Field, Value: bson.D{{Key: "$exists", Value: true}}}
	default:
		opts := ""
		if c.CaseInsensitive {
			opts = "i"
		}
		return bson.E{Key: c.Field, Value: primitive.Regex{Pattern: c.Pattern, Options: opts}}
	}
}
