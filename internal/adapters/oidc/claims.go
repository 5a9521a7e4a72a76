package oidc

import (
	"encoding/json"
	"strconv"
)

// boolOrString decodes claims some issuers emit either as a JSON boolean or as "true"/"false".
type boolOrString bool

func (b *boolOrString) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = boolOrString(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*b = boolOrString(parsed)
	return nil
}
