package common

import (
	"fmt"

	"github.com/teemow/mcp-google-workspace/internal/dispatch"
)

const gridExpected = "2-D array of cell values"

// Grid returns the JSON argument name as rows of cell values. It must be a
// non-empty array whose elements are all arrays.
func Grid(args dispatch.Args, name string) ([][]interface{}, error) {
	raw, ok := args.JSON(name).([]interface{})
	if !ok {
		return nil, &dispatch.InvalidArgumentError{
			Param:    name,
			Expected: gridExpected,
			Reason:   fmt.Sprintf("got %T", args.JSON(name)),
		}
	}
	if len(raw) == 0 {
		return nil, &dispatch.InvalidArgumentError{Param: name, Expected: gridExpected, Reason: "no rows"}
	}

	rows := make([][]interface{}, 0, len(raw))
	for i, r := range raw {
		row, ok := r.([]interface{})
		if !ok {
			return nil, &dispatch.InvalidArgumentError{
				Param:    name,
				Expected: gridExpected,
				Reason:   fmt.Sprintf("row %d is %T, not an array", i, r),
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Invalid is shorthand for an InvalidArgumentError.
func Invalid(param, expected, reason string) error {
	return &dispatch.InvalidArgumentError{Param: param, Expected: expected, Reason: reason}
}
