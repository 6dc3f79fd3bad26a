// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package schema extracts operator names from operator schema strings.
//
// A schema looks like "add.Tensor(Tensor self, Tensor other) -> Tensor": a name ("add"), an optional
// overload name ("Tensor"), followed by the argument list and return types. Only the name part is
// parsed here: there is no need for a full schema parser to route registrations.
package schema

import (
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// ErrMalformedSchema is returned when a schema string doesn't have the required delimiters.
var ErrMalformedSchema = errors.New("malformed operator schema")

// OperatorName identifies an operator by its name and overload name.
// OverloadName is empty for the default overload.
type OperatorName struct {
	Name, OverloadName string
}

// String returns "name.overload", or just "name" for the default overload.
func (op OperatorName) String() string {
	if op.OverloadName == "" {
		return op.Name
	}
	return op.Name + "." + op.OverloadName
}

// ParseOperatorName returns the OperatorName of the schema.
//
// The name ends at the first '.' or '('. If it ends in '.', the overload name is what follows up
// to the next '('. It returns an error wrapping ErrMalformedSchema if there is no '('.
func ParseOperatorName(schema string) (OperatorName, error) {
	nameEnd := strings.IndexAny(schema, ".(")
	if nameEnd == -1 || strings.IndexByte(schema, '(') == -1 {
		return OperatorName{}, errors.Wrapf(ErrMalformedSchema,
			"operator schema %q must contain a '(' character to start the argument list", schema)
	}
	op := OperatorName{Name: schema[:nameEnd]}
	if schema[nameEnd] == '(' {
		return op, nil
	}
	overloadEnd := strings.IndexByte(schema[nameEnd:], '(')
	if overloadEnd == -1 {
		// Not reachable: we checked above there is a '(' and a '.' can't come after it.
		exceptions.Panicf("operator schema %q: no '(' after the overload name", schema)
	}
	op.OverloadName = schema[nameEnd+1 : nameEnd+overloadEnd]
	return op, nil
}

// MustParseOperatorName is like ParseOperatorName, but panics on error.
// Convenient for statically known schemas.
func MustParseOperatorName(schema string) OperatorName {
	op, err := ParseOperatorName(schema)
	if err != nil {
		panic(err)
	}
	return op
}
