package postgres

import (
	"encoding/json"

	"github.com/jackc/pgtype"
)

// JSONB encodes v as a jsonb parameter.
func JSONB(v any) (pgtype.JSONB, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return pgtype.JSONB{}, err
	}
	return pgtype.JSONB{Bytes: b, Status: pgtype.Present}, nil
}

// FromJSONB decodes j into dest. A NULL leaves dest untouched.
func FromJSONB(j pgtype.JSONB, dest any) error {
	if j.Status != pgtype.Present {
		return nil
	}
	return json.Unmarshal(j.Bytes, dest)
}
