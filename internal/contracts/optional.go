package contracts

import (
	"encoding/json"
	"math"
	"strconv"
)

// OptionalFloat is a metric value that may be unavailable.
// An absent value is distinct from zero and stays absent in stored records;
// only scoring substitutes a neutral default.
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Some returns a present value. NaN and ±Inf are treated as absent.
func Some(v float64) OptionalFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return OptionalFloat{}
	}
	return OptionalFloat{Value: v, Valid: true}
}

// None returns an absent value
func None() OptionalFloat {
	return OptionalFloat{}
}

// Get returns the value and whether it is present
func (o OptionalFloat) Get() (float64, bool) {
	return o.Value, o.Valid
}

// OrZero returns the value, or 0 when absent
func (o OptionalFloat) OrZero() float64 {
	if !o.Valid {
		return 0
	}
	return o.Value
}

// Ptr returns nil when absent
func (o OptionalFloat) Ptr() *float64 {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// FromPtr converts a nullable pointer into an OptionalFloat
func FromPtr(p *float64) OptionalFloat {
	if p == nil {
		return None()
	}
	return Some(*p)
}

func (o OptionalFloat) String() string {
	if !o.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(o.Value, 'f', 2, 64)
}

// MarshalJSON encodes an absent value as null
func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON decodes null as absent
func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	var p *float64
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = FromPtr(p)
	return nil
}
