package domain

import (
	"net/url"
	"strconv"
)

// The backend reads list filters as repeated query keys and ranges as
// <field>_gt / <field>_lt pairs.

func addInts(v url.Values, key string, ids []int) {
	for _, id := range ids {
		v.Add(key, strconv.Itoa(id))
	}
}

func addStrings(v url.Values, key string, values []string) {
	for _, s := range values {
		if s != "" {
			v.Add(key, s)
		}
	}
}

func setDate(v url.Values, key string, d *Date) {
	if d != nil && !d.IsZero() {
		v.Set(key, d.String())
	}
}

func setFloat(v url.Values, key string, f *float64) {
	if f != nil {
		v.Set(key, strconv.FormatFloat(*f, 'f', -1, 64))
	}
}

// TransactionFilters narrows GET /transactions.
type TransactionFilters struct {
	TypeIDs     []int
	CategoryIDs []int
	DateAfter   *Date
	DateBefore  *Date
	ValueAbove  *float64
	ValueBelow  *float64
	Comments    []string
}

// Values encodes the filters as query parameters.
func (f TransactionFilters) Values() url.Values {
	v := url.Values{}
	addInts(v, "type_id", f.TypeIDs)
	addInts(v, "category_id", f.CategoryIDs)
	setDate(v, "date_gt", f.DateAfter)
	setDate(v, "date_lt", f.DateBefore)
	setFloat(v, "value_gt", f.ValueAbove)
	setFloat(v, "value_lt", f.ValueBelow)
	addStrings(v, "comment", f.Comments)
	return v
}

// GoalFilters narrows GET /goals.
type GoalFilters struct {
	TypeIDs         []int
	CategoryIDs     []int
	Names           []string
	StartDateAfter  *Date
	StartDateBefore *Date
	EndDateAfter    *Date
	EndDateBefore   *Date
	TargetAbove     *float64
	TargetBelow     *float64
}

// Values encodes the filters as query parameters.
func (f GoalFilters) Values() url.Values {
	v := url.Values{}
	addInts(v, "type_id", f.TypeIDs)
	addInts(v, "category_id", f.CategoryIDs)
	addStrings(v, "name", f.Names)
	setDate(v, "start_date_gt", f.StartDateAfter)
	setDate(v, "start_date_lt", f.StartDateBefore)
	setDate(v, "end_date_gt", f.EndDateAfter)
	setDate(v, "end_date_lt", f.EndDateBefore)
	setFloat(v, "target_value_gt", f.TargetAbove)
	setFloat(v, "target_value_lt", f.TargetBelow)
	return v
}

// Values encodes the filters as query parameters.
func (f UserFilters) Values() url.Values {
	v := url.Values{}
	addInts(v, "role_id", f.RoleIDs)
	addStrings(v, "email", f.Emails)
	return v
}
